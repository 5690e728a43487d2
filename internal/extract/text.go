package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// VehicleFacts is the vehicle portion of an extraction result. Empty
// string / nil means the fact was not found.
type VehicleFacts struct {
	Year        *int
	Make        string
	Model       string
	Trim        string
	VIN         string
	StockNumber string
	Mileage     *int
	Condition   string
	ListingURL  string
}

// DealerFacts is the dealer portion of an extraction result.
type DealerFacts struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	Website      string
	SalesRepName string
}

// PricingFacts is the pricing portion of an extraction result.
type PricingFacts struct {
	AskingPrice *float64
}

// Result is a best-effort {vehicle, dealer, pricing} record. Extraction
// never fails; an unmatched field keeps its zero value.
type Result struct {
	Vehicle VehicleFacts
	Dealer  DealerFacts
	Pricing PricingFacts
}

// PriceContext selects the plausibility window for price extraction.
// Conversation threads rarely quote below 5k; listing pages can list
// cheap inventory, so their floor is lower and ceiling higher.
type PriceContext int

const (
	ContextConversation PriceContext = iota
	ContextHTMLListing
)

func (c PriceContext) bounds() (min, max int) {
	if c == ContextHTMLListing {
		return 1000, 500000
	}
	return 5000, 200000
}

var (
	vinPattern   = regexp.MustCompile(`\b[A-HJ-NPR-Za-hj-npr-z0-9]{17}\b`)
	pricePattern = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
	stockPattern = regexp.MustCompile(`(?i)\b(?:stock|stk|inventory)\s*(?:number|num|#)?\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-]*)`)
	wordPattern  = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

	milesPattern  = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)\s*(?:miles|mi)\b`)
	milesKPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)k\b(?:\s*(?:miles|mi)\b)?`)
)

// Engine extracts structured facts from free-form conversation text.
// It is stateless after construction and safe for concurrent use.
type Engine struct {
	makes       []string
	models      map[string][]string
	firstNames  map[string]bool
	dealers     []KnownDealer
	webmail     map[string]bool
	makePattern *regexp.Regexp

	dealerOfPattern   *regexp.Regexp
	dealerMakePattern *regexp.Regexp
	dealerWordPattern *regexp.Regexp
}

// NewEngine builds an engine over the default reference tables.
func NewEngine() *Engine {
	alternation := makeAlternation(makeNames)
	return &Engine{
		makes:       makeNames,
		models:      makeModels,
		firstNames:  firstNames,
		dealers:     knownDealers,
		webmail:     webmailDomains,
		makePattern: regexp.MustCompile(`(?i)\b(` + alternation + `)\s+([A-Za-z0-9][A-Za-z0-9\-\.]*)`),
		dealerOfPattern: regexp.MustCompile(
			`((?i:` + alternation + `)\s+of\s+[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){0,2})`),
		dealerMakePattern: regexp.MustCompile(
			`([A-Z][A-Za-z'&\.]*(?:\s+[A-Z][A-Za-z'&\.]*)*\s+(?i:` + alternation + `)(?:\s+of\s+[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)?)`),
		dealerWordPattern: regexp.MustCompile(
			`([A-Z][A-Za-z'&\.]*(?:\s+[A-Z][A-Za-z'&\.]*)*\s+(?:Auto|Motors|Automotive|Dealership|Cars)(?:\s+[A-Z][A-Za-z'&\.]*)*)`),
	}
}

func makeAlternation(makes []string) string {
	escaped := make([]string, len(makes))
	for i, m := range makes {
		escaped[i] = regexp.QuoteMeta(m)
	}
	return strings.Join(escaped, "|")
}

// ParseConversation extracts vehicle, dealer, and pricing facts from a
// concatenated conversation. hint, when non-nil, pre-seeds the dealer
// fields; parsing only fills fields the hint left empty, and the known
// dealer directory still takes final precedence.
func (e *Engine) ParseConversation(text string, hint *DealerFacts) Result {
	res := Result{Vehicle: VehicleFacts{Condition: "used"}}
	if hint != nil {
		res.Dealer = *hint
	}

	res.Vehicle.VIN, res.Vehicle.Year = e.ExtractVIN(text)
	res.Vehicle.Make, res.Vehicle.Model = e.ExtractMakeModel(text)

	if res.Dealer.SalesRepName == "" {
		res.Dealer.SalesRepName = e.ExtractSalesRep(text)
	}
	if res.Dealer.Name == "" {
		res.Dealer.Name = e.ExtractDealerName(text)
	}
	if kd := e.LookupKnownDealer(res.Dealer.Name); kd != nil {
		res.Dealer.Name = kd.Name
		res.Dealer.Email = kd.Email
		res.Dealer.Phone = kd.Phone
		res.Dealer.Address = kd.Address
		res.Dealer.Website = kd.Website
	}
	if res.Dealer.Email == "" {
		res.Dealer.Email = e.ExtractEmail(text)
	}
	if res.Dealer.Phone == "" {
		res.Dealer.Phone = e.ExtractPhone(text)
	}

	res.Pricing.AskingPrice = e.ExtractPrice(text, ContextConversation)
	res.Vehicle.Mileage = e.ExtractMileage(text)
	res.Vehicle.StockNumber = e.ExtractStockNumber(text)

	return res
}

// ExtractVIN finds the first 17-character token over the VIN alphabet
// (no I, O, Q) and normalizes it to uppercase. The model year is
// decoded from the 10th character only when the VIN starts with a
// recognized manufacturer prefix.
func (e *Engine) ExtractVIN(text string) (string, *int) {
	m := vinPattern.FindString(text)
	if m == "" {
		return "", nil
	}
	vin := strings.ToUpper(m)

	for _, prefix := range vinWMIPrefixes {
		if strings.HasPrefix(vin, prefix) {
			if year, ok := vinYearCodes[vin[9]]; ok {
				return vin, &year
			}
			break
		}
	}
	return vin, nil
}

// ExtractMakeModel first tries exact "<make> <model>" pairs from the
// curated table, earliest occurrence in the text winning. When no table
// pair matches it falls back to "<known make> <free-form token>".
func (e *Engine) ExtractMakeModel(text string) (string, string) {
	lower := strings.ToLower(text)

	bestIdx := -1
	var bestMake, bestModel string
	for mk, models := range e.models {
		for _, md := range models {
			needle := strings.ToLower(mk + " " + md)
			if idx := strings.Index(lower, needle); idx >= 0 && (bestIdx == -1 || idx < bestIdx) {
				bestIdx, bestMake, bestModel = idx, mk, md
			}
		}
	}
	if bestIdx >= 0 {
		return bestMake, bestModel
	}

	if m := e.makePattern.FindStringSubmatch(text); m != nil {
		return e.canonicalMake(m[1]), m[2]
	}
	return "", ""
}

// canonicalMake maps a case-insensitive match back to the table casing.
func (e *Engine) canonicalMake(s string) string {
	for _, mk := range e.makes {
		if strings.EqualFold(mk, s) {
			return mk
		}
	}
	return s
}

// ExtractSalesRep returns the first capitalized token from the first
// name list that is followed later in the text by a manufacturer name.
func (e *Engine) ExtractSalesRep(text string) string {
	lower := strings.ToLower(text)
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		if !e.firstNames[token] {
			continue
		}
		rest := lower[loc[1]:]
		for _, mk := range e.makes {
			if strings.Contains(rest, strings.ToLower(mk)) {
				return token
			}
		}
	}
	return ""
}

// ExtractDealerName tries the dealer name patterns in precedence order:
// "<Make> of <City>", then "<Words> <Make> [of <Words>]", then
// "<Words> (Auto|Motors|Automotive|Dealership|Cars) <Words>". The first
// non-trivial match wins.
func (e *Engine) ExtractDealerName(text string) string {
	for _, p := range []*regexp.Regexp{e.dealerOfPattern, e.dealerMakePattern, e.dealerWordPattern} {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if len(name) > 3 && !strings.Contains(name, "@") {
				return name
			}
		}
	}
	return ""
}

// LookupKnownDealer returns the directory entry whose name the parsed
// name contains, or nil.
func (e *Engine) LookupKnownDealer(name string) *KnownDealer {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	for i := range e.dealers {
		if strings.Contains(lower, strings.ToLower(e.dealers[i].Name)) {
			return &e.dealers[i]
		}
	}
	return nil
}

// ExtractEmail returns the first address not hosted on a consumer
// webmail domain.
func (e *Engine) ExtractEmail(text string) string {
	for _, m := range emailPattern.FindAllString(text, -1) {
		at := strings.LastIndex(m, "@")
		domain := strings.ToLower(m[at+1:])
		if !e.webmail[domain] {
			return m
		}
	}
	return ""
}

// ExtractPhone returns the first North-American phone number match.
func (e *Engine) ExtractPhone(text string) string {
	return phonePattern.FindString(text)
}

// ExtractPrice collects every $-prefixed amount inside the context's
// plausibility window and returns the maximum. In a negotiation thread
// the highest figure mentioned is most often the asking price rather
// than a counteroffer.
func (e *Engine) ExtractPrice(text string, ctx PriceContext) *float64 {
	min, max := ctx.bounds()
	best := -1
	for _, m := range pricePattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if n >= min && n <= max && n > best {
			best = n
		}
	}
	if best < 0 {
		return nil
	}
	v := float64(best)
	return &v
}

// ExtractOfferPrice applies the conversation price rule to a single
// message, for deriving contains_offer / extracted_price at creation.
func (e *Engine) ExtractOfferPrice(content string) (*float64, bool) {
	p := e.ExtractPrice(content, ContextConversation)
	return p, p != nil
}

// ExtractMileage matches "<n> miles|mi" first, then the "<n>k" form
// (multiplied by 1000). Results outside (0, 500000) are discarded.
func (e *Engine) ExtractMileage(text string) *int {
	if m := milesPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < 500000 {
			return &n
		}
	}
	if m := milesKPattern.FindStringSubmatch(text); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			n := int(f * 1000)
			if n > 0 && n < 500000 {
				return &n
			}
		}
	}
	return nil
}

// ExtractStockNumber returns the token following a stock/stk/inventory
// label.
func (e *Engine) ExtractStockNumber(text string) string {
	if m := stockPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
