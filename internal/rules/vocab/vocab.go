// Package vocab holds the accessibility vocabularies shared by rule engines.
package vocab

import (
	"strings"

	"golang.org/x/text/language"
)

// ariaRoles are the non-abstract WAI-ARIA 1.2 roles.
var ariaRoles = map[string]struct{}{
	"alert": {}, "alertdialog": {}, "application": {}, "article": {}, "banner": {},
	"blockquote": {}, "button": {}, "caption": {}, "cell": {}, "checkbox": {},
	"code": {}, "columnheader": {}, "combobox": {}, "complementary": {}, "contentinfo": {},
	"definition": {}, "deletion": {}, "dialog": {}, "directory": {}, "document": {},
	"emphasis": {}, "feed": {}, "figure": {}, "form": {}, "generic": {},
	"grid": {}, "gridcell": {}, "group": {}, "heading": {}, "img": {},
	"insertion": {}, "link": {}, "list": {}, "listbox": {}, "listitem": {},
	"log": {}, "main": {}, "marquee": {}, "math": {}, "menu": {},
	"menubar": {}, "menuitem": {}, "menuitemcheckbox": {}, "menuitemradio": {}, "meter": {},
	"navigation": {}, "none": {}, "note": {}, "option": {}, "paragraph": {},
	"presentation": {}, "progressbar": {}, "radio": {}, "radiogroup": {}, "region": {},
	"row": {}, "rowgroup": {}, "rowheader": {}, "scrollbar": {}, "search": {},
	"searchbox": {}, "separator": {}, "slider": {}, "spinbutton": {}, "status": {},
	"strong": {}, "subscript": {}, "superscript": {}, "switch": {}, "tab": {},
	"table": {}, "tablist": {}, "tabpanel": {}, "term": {}, "textbox": {},
	"time": {}, "timer": {}, "toolbar": {}, "tooltip": {}, "tree": {},
	"treegrid": {}, "treeitem": {},
}

// IsValidRole reports whether role is a non-abstract WAI-ARIA role.
// Matching is case-insensitive.
func IsValidRole(role string) bool {
	_, ok := ariaRoles[strings.ToLower(strings.TrimSpace(role))]
	return ok
}

// IsValidLang reports whether value is a well-formed BCP 47 language tag.
func IsValidLang(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	_, err := language.Parse(value)
	return err == nil
}
