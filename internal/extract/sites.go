package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// siteExtractor is a bespoke extractor for one dealer website.
type siteExtractor func(x *HTMLExtractor, rawURL, body string) Result

// siteExtractors maps a hostname (www. stripped) to its bespoke
// extractor. These dealer platforms encode the vehicle directly in the
// inventory URL path, which is far more reliable than page scraping.
var siteExtractors = map[string]siteExtractor{
	"toyotaofcedarpark.com": extractDealerInspire,
	"leanderchevrolet.com":  extractDealerInspire,
	"roundrockhonda.com":    extractDealerInspire,
	"covertford.com":        extractDealerInspire,
}

var inventorySegmentPattern = regexp.MustCompile(`(?i)^(new|used|certified)-((?:19|20)\d{2})-([a-z]+)-(.+)$`)

// extractDealerInspire handles the inventory URL scheme shared by the
// Dealer Inspire platform sites in the known-dealer directory:
//
//	/inventory/{new|used|certified}-{year}-{make}-{model...}[-{trim...}][-{vin}]/
//
// The canonical dealer contact record comes from the directory, and the
// asking price still comes from the page body.
func extractDealerInspire(x *HTMLExtractor, rawURL, body string) Result {
	res := Result{Vehicle: VehicleFacts{Condition: "used", ListingURL: rawURL}}

	if v, ok := parseInventoryPath(rawURL); ok {
		res.Vehicle = v
		res.Vehicle.ListingURL = rawURL
	}

	host := hostOf(rawURL)
	for i := range knownDealers {
		kd := &knownDealers[i]
		if strings.Contains(strings.ToLower(kd.Website), host) {
			res.Dealer = DealerFacts{
				Name:    kd.Name,
				Email:   kd.Email,
				Phone:   kd.Phone,
				Address: kd.Address,
				Website: kd.Website,
			}
			break
		}
	}
	if res.Dealer.Name == "" {
		res.Dealer.Name = hostnameToName(host)
		res.Dealer.Website = rawURL
	}

	text := stripMarkup(body)
	res.Pricing.AskingPrice = x.extractPriceCascade(body, text)
	if res.Vehicle.VIN == "" {
		res.Vehicle.VIN, _ = x.engine.ExtractVIN(text)
	}
	if res.Vehicle.Mileage == nil {
		res.Vehicle.Mileage = x.engine.ExtractMileage(text)
	}
	if res.Vehicle.StockNumber == "" {
		res.Vehicle.StockNumber = x.engine.ExtractStockNumber(text)
	}
	return res
}

// parseInventoryPath decomposes the last path segment of an inventory
// URL into vehicle facts. A trailing 17-character token is taken as the
// VIN; remaining dash-separated tokens past the model become the trim.
func parseInventoryPath(rawURL string) (VehicleFacts, bool) {
	v := VehicleFacts{Condition: "used"}

	u, err := url.Parse(rawURL)
	if err != nil {
		return v, false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return v, false
	}
	last := segments[len(segments)-1]

	m := inventorySegmentPattern.FindStringSubmatch(last)
	if m == nil {
		return v, false
	}

	v.Condition = strings.ToLower(m[1])
	if y, err := strconv.Atoi(m[2]); err == nil {
		v.Year = &y
	}
	v.Make = titleCase(m[3])

	rest := strings.Split(m[4], "-")
	if vin := rest[len(rest)-1]; len(vin) == 17 && vinPattern.MatchString(vin) {
		v.VIN = strings.ToUpper(vin)
		rest = rest[:len(rest)-1]
	}
	if len(rest) == 0 {
		return v, false
	}
	v.Model = titleCase(rest[0])
	if len(rest) > 1 {
		v.Trim = titleCase(strings.Join(rest[1:], " "))
	}
	return v, true
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
