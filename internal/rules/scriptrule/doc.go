// Package scriptrule implements rules written in JavaScript, executed with
// goja.
//
// A script defines a global evaluate function, and optionally a matches
// function, both called once per candidate node:
//
//	function matches(node, options) {
//	  return node.nodeName === "button";
//	}
//
//	function evaluate(node, options) {
//	  return node.text !== "" || "aria-label" in node.attributes;
//	}
//
// evaluate may return:
//   - a boolean: the node passes or fails
//   - an object {result, data}: result is a boolean or one of "passed",
//     "failed", "incomplete"; data is attached to the check result
//   - null or undefined: the rule does not apply to the node
//
// The node argument has the fields nodeName, attributes, text, childCount,
// and hidden. Scripts may call isValidRole(token) and isValidLang(value).
//
// Node.js globals such as require and process are not available, and each
// evaluation runs in a fresh runtime bounded by a timeout.
package scriptrule
