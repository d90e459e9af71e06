package vocab

import "testing"

func TestIsValidRole(t *testing.T) {
	t.Parallel()

	for role, want := range map[string]bool{
		"button": true, "Navigation": true, " main ": true,
		"banana": false, "": false, "widget": false,
	} {
		if got := IsValidRole(role); got != want {
			t.Errorf("IsValidRole(%q) = %v, expected %v", role, got, want)
		}
	}
}

func TestIsValidLang(t *testing.T) {
	t.Parallel()

	for lang, want := range map[string]bool{
		"en": true, "en-US": true, "ja": true, "zh-Hant-TW": true,
		"": false, "   ": false, "english please": false,
	} {
		if got := IsValidLang(lang); got != want {
			t.Errorf("IsValidLang(%q) = %v, expected %v", lang, got, want)
		}
	}
}
