package identity

import "strings"

// blockSignatures lists marker phrases for anti-bot interstitials and login
// walls. Each signature is conjunctive: every phrase in the group must appear
// in the page title or body for the page to count as blocked. Missing a real
// block is acceptable; flagging a real mod page is not, so none of these rely
// on a single common word.
var blockSignatures = [][]string{
	{"checking your browser"},
	{"verify you are human"},
	{"enable javascript and cookies to continue"},
	{"just a moment", "cloudflare"},
	{"attention required", "cloudflare"},
	{"access to this page has been denied"},
	{"please log in to view this content"},
	{"sign in to continue"},
	{"you must be a member to see this content"},
}

func matchesBlockSignature(title, body string) bool {
	haystack := strings.ToLower(title) + "\n" + body
	for _, phrases := range blockSignatures {
		all := true
		for _, phrase := range phrases {
			if !strings.Contains(haystack, phrase) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
