package extract

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	titlePattern  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Pattern     = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	scriptPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)

	labeledVINPattern = regexp.MustCompile(`(?i)\bVIN\b[^A-HJ-NPR-Za-hj-npr-z0-9]{0,5}([A-HJ-NPR-Za-hj-npr-z0-9]{17})\b`)

	// Price markup shapes, tried in order; every hit in range is a
	// candidate and the highest candidate wins.
	jsonPricePattern    = regexp.MustCompile(`"(?:price|listPrice|sellingPrice|internetPrice)"\s*:\s*"?(\d+(?:\.\d+)?)"?`)
	dataPricePattern    = regexp.MustCompile(`(?i)data-price\s*=\s*["'](\d+(?:\.\d+)?)["']`)
	classPricePattern   = regexp.MustCompile(`(?is)(?:class|id)\s*=\s*["'][^"']*price[^"']*["'][^>]*>\s*\$?\s*(\d{1,3}(?:,\d{3})+|\d{4,})`)
	metaPricePattern    = regexp.MustCompile(`(?i)<meta[^>]+property\s*=\s*["']product:price:amount["'][^>]+content\s*=\s*["'](\d+(?:\.\d+)?)["']`)
	microPricePattern   = regexp.MustCompile(`(?i)itemprop\s*=\s*["']price["'][^>]*content\s*=\s*["'](\d+(?:\.\d+)?)["']`)
	labeledPricePattern = regexp.MustCompile(`(?i)(?:MSRP|Our Price|Sale Price|Internet Price|Asking Price)[^$\d]{0,20}\$?\s*(\d{1,3}(?:,\d{3})+|\d{4,})`)

	yearMakeModelPattern *regexp.Regexp
)

func init() {
	yearMakeModelPattern = regexp.MustCompile(
		`\b((?:19|20)\d{2})\s+((?i:` + makeAlternation(makeNames) + `))\s+([A-Za-z0-9][A-Za-z0-9\-\.]*)`)
}

// HTMLExtractor pulls the same {vehicle, dealer, pricing} shape out of
// fetched listing HTML. Known dealer domains get bespoke extraction;
// everything else goes through the generic path.
type HTMLExtractor struct {
	engine *Engine
	sites  map[string]siteExtractor
}

// NewHTMLExtractor builds an extractor sharing the text engine's
// reference tables.
func NewHTMLExtractor(engine *Engine) *HTMLExtractor {
	return &HTMLExtractor{engine: engine, sites: siteExtractors}
}

// Parse dispatches by hostname and falls through to the generic
// extractor. It never fails; a page that matches nothing yields a
// result carrying only the hostname-derived dealer name and the URL.
func (x *HTMLExtractor) Parse(rawURL, body string) Result {
	host := hostOf(rawURL)
	if fn, ok := x.sites[host]; ok {
		return fn(x, rawURL, body)
	}
	return x.parseGeneric(rawURL, body)
}

// Fallback returns the last-resort result for a URL whose body could
// not be parsed at all: hostname as dealer name, URL as the listing.
func (x *HTMLExtractor) Fallback(rawURL string) Result {
	return Result{
		Vehicle: VehicleFacts{Condition: "used", ListingURL: rawURL},
		Dealer:  DealerFacts{Name: hostnameToName(hostOf(rawURL)), Website: rawURL},
	}
}

func (x *HTMLExtractor) parseGeneric(rawURL, body string) Result {
	res := Result{Vehicle: VehicleFacts{Condition: "used", ListingURL: rawURL}}
	text := stripMarkup(body)

	// Title and h1 carry the "<year> <make> <model>" shape most often.
	heading := headingText(body)
	if m := yearMakeModelPattern.FindStringSubmatch(heading); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			res.Vehicle.Year = &y
		}
		res.Vehicle.Make = x.engine.canonicalMake(m[2])
		res.Vehicle.Model = m[3]
	} else if m := yearMakeModelPattern.FindStringSubmatch(text); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			res.Vehicle.Year = &y
		}
		res.Vehicle.Make = x.engine.canonicalMake(m[2])
		res.Vehicle.Model = m[3]
	}

	// Labeled VIN beats a bare 17-character scan.
	if m := labeledVINPattern.FindStringSubmatch(body); m != nil {
		res.Vehicle.VIN = strings.ToUpper(m[1])
		if _, year := x.engine.ExtractVIN(res.Vehicle.VIN); year != nil {
			res.Vehicle.Year = year
		}
	} else if vin, year := x.engine.ExtractVIN(text); vin != "" {
		res.Vehicle.VIN = vin
		if year != nil {
			res.Vehicle.Year = year
		}
	}

	res.Pricing.AskingPrice = x.extractPriceCascade(body, text)
	res.Vehicle.Mileage = x.engine.ExtractMileage(text)
	res.Vehicle.StockNumber = x.engine.ExtractStockNumber(text)

	res.Dealer.Name = x.engine.ExtractDealerName(text)
	if res.Dealer.Name == "" {
		res.Dealer.Name = hostnameToName(hostOf(rawURL))
	}
	res.Dealer.Website = rawURL
	res.Dealer.Email = x.engine.ExtractEmail(text)
	res.Dealer.Phone = x.engine.ExtractPhone(text)

	return res
}

// extractPriceCascade collects price candidates from every markup
// shape, then keeps the highest one inside the listing window.
func (x *HTMLExtractor) extractPriceCascade(body, text string) *float64 {
	min, max := ContextHTMLListing.bounds()
	best := -1.0

	consider := func(raw string) {
		raw = strings.ReplaceAll(raw, ",", "")
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return
		}
		if n >= float64(min) && n <= float64(max) && n > best {
			best = n
		}
	}

	if p := x.engine.ExtractPrice(text, ContextHTMLListing); p != nil {
		best = *p
	}
	for _, pat := range []*regexp.Regexp{
		jsonPricePattern, dataPricePattern, classPricePattern,
		metaPricePattern, microPricePattern, labeledPricePattern,
	} {
		for _, m := range pat.FindAllStringSubmatch(body, -1) {
			consider(m[1])
		}
	}

	if best < 0 {
		return nil
	}
	return &best
}

func headingText(body string) string {
	var parts []string
	if m := titlePattern.FindStringSubmatch(body); m != nil {
		parts = append(parts, m[1])
	}
	for _, m := range h1Pattern.FindAllStringSubmatch(body, -1) {
		parts = append(parts, m[1])
	}
	return html.UnescapeString(tagPattern.ReplaceAllString(strings.Join(parts, " "), " "))
}

func stripMarkup(body string) string {
	s := scriptPattern.ReplaceAllString(body, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	return html.UnescapeString(s)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// hostnameToName turns "hillcountrymotors.com" into "Hillcountrymotors"
// as a last-resort dealer name.
func hostnameToName(host string) string {
	if host == "" {
		return ""
	}
	base := host
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		return ""
	}
	return strings.ToUpper(base[:1]) + base[1:]
}
