package classifier

import "regexp"

// Entity patterns. The ticket number format is a wire contract shared with the
// lifecycle engine's number generator.
var (
	ticketNumberPattern = regexp.MustCompile(`TKT-\d{4}-\d{5}`)
	phonePattern        = regexp.MustCompile(`(?:\+?20)?(?:0)?1[0125]\d{8}`)
	datePattern         = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
	quantityPattern     = regexp.MustCompile(`(?i)(?:quantity|qty|كمية|عدد)[:\s]*(\d+)`)
	emailPattern        = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
)
