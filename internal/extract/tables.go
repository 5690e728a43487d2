package extract

// Static reference tables used by the extraction engines. These are
// immutable configuration data: the engines read them, never write.

// makeNames is the recognized manufacturer list, longest names first so
// that regex alternation prefers "Alfa Romeo" over a bare "Alfa" and
// "Mercedes-Benz" over "Mercedes".
var makeNames = []string{
	"Mercedes-Benz",
	"Alfa Romeo",
	"Land Rover",
	"Volkswagen",
	"Chevrolet",
	"Mitsubishi",
	"Infiniti",
	"Cadillac",
	"Chrysler",
	"Maserati",
	"Mercedes",
	"Polestar",
	"Genesis",
	"Hyundai",
	"Lincoln",
	"Porsche",
	"Acura",
	"Buick",
	"Chevy",
	"Dodge",
	"Honda",
	"Jaguar",
	"Lexus",
	"Lucid",
	"Mazda",
	"Nissan",
	"Rivian",
	"Subaru",
	"Tesla",
	"Toyota",
	"Audi",
	"Fiat",
	"Ford",
	"Jeep",
	"Mini",
	"Volvo",
	"BMW",
	"GMC",
	"Kia",
	"Ram",
}

// makeModels maps a manufacturer to the models we match exactly before
// falling back to the free-form "<make> <token>" regex. Model names may
// be multi-word ("Grand Cherokee", "Model 3").
var makeModels = map[string][]string{
	"Toyota":    {"Tundra", "Tacoma", "Camry", "Corolla", "RAV4", "Highlander", "4Runner", "Sienna", "Sequoia", "Prius"},
	"Honda":     {"Civic", "Accord", "CR-V", "Pilot", "Odyssey", "Ridgeline", "HR-V", "Passport"},
	"Ford":      {"F-150", "F-250", "Mustang", "Explorer", "Escape", "Bronco", "Maverick", "Expedition", "Ranger"},
	"Chevrolet": {"Silverado", "Tahoe", "Suburban", "Equinox", "Traverse", "Colorado", "Blazer", "Malibu"},
	"Chevy":     {"Silverado", "Tahoe", "Suburban", "Equinox", "Traverse", "Colorado", "Blazer", "Malibu"},
	"Ram":       {"1500", "2500", "3500", "ProMaster"},
	"Jeep":      {"Wrangler", "Grand Cherokee", "Cherokee", "Gladiator", "Compass", "Wagoneer"},
	"GMC":       {"Sierra", "Yukon", "Acadia", "Terrain", "Canyon"},
	"Subaru":    {"Outback", "Forester", "Crosstrek", "Ascent", "Impreza", "WRX"},
	"Nissan":    {"Altima", "Rogue", "Frontier", "Pathfinder", "Sentra", "Titan", "Murano"},
	"Hyundai":   {"Tucson", "Santa Fe", "Elantra", "Palisade", "Sonata", "Kona", "Ioniq 5"},
	"Kia":       {"Telluride", "Sorento", "Sportage", "Forte", "Carnival", "EV6"},
	"Tesla":     {"Model 3", "Model Y", "Model S", "Model X", "Cybertruck"},
	"Mazda":     {"CX-5", "CX-9", "CX-50", "CX-90", "Mazda3", "MX-5 Miata"},
	"Volkswagen": {"Tiguan", "Atlas", "Jetta", "Taos", "ID.4", "Golf GTI"},
	"BMW":       {"X5", "X3", "X7", "330i", "M3", "i4"},
	"Lexus":     {"RX 350", "NX 250", "ES 350", "GX 550", "TX 350"},
	"Audi":      {"Q5", "Q7", "A4", "A6", "Q3", "e-tron"},
	"Dodge":     {"Durango", "Charger", "Hornet"},
}

// firstNames is the list used by the sales-rep rule. A token from this
// list counts as a rep name only when a manufacturer name appears later
// in the text.
var firstNames = map[string]bool{
	"Aaron": true, "Adam": true, "Alex": true, "Amanda": true, "Amber": true,
	"Amy": true, "Andrew": true, "Angela": true, "Anthony": true, "Ashley": true,
	"Austin": true, "Ben": true, "Bill": true, "Bob": true, "Brandon": true,
	"Brian": true, "Carlos": true, "Chad": true, "Chris": true, "Christina": true,
	"Dan": true, "Daniel": true, "Dave": true, "David": true, "Derek": true,
	"Eric": true, "Frank": true, "Gary": true, "Greg": true, "Heather": true,
	"Jake": true, "James": true, "Jason": true, "Jeff": true, "Jennifer": true,
	"Jeremy": true, "Jessica": true, "Jim": true, "Joe": true, "John": true,
	"Jose": true, "Josh": true, "Juan": true, "Justin": true, "Karen": true,
	"Kevin": true, "Kyle": true, "Larry": true, "Laura": true, "Lisa": true,
	"Luis": true, "Marcus": true, "Maria": true, "Mark": true, "Matt": true,
	"Melissa": true, "Michael": true, "Michelle": true, "Mike": true, "Nick": true,
	"Nicole": true, "Patrick": true, "Paul": true, "Pete": true, "Rachel": true,
	"Randy": true, "Rick": true, "Robert": true, "Ryan": true, "Sam": true,
	"Sarah": true, "Scott": true, "Sean": true, "Stephanie": true, "Steve": true,
	"Tim": true, "Todd": true, "Tom": true, "Tony": true, "Travis": true,
	"Tyler": true, "Victor": true, "Will": true, "Zach": true,
}

// KnownDealer is a curated directory entry. When a parsed dealer name
// contains a directory name (case-insensitive), the directory's
// canonical contact details replace whatever was parsed.
type KnownDealer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Website string
}

var knownDealers = []KnownDealer{
	{
		Name:    "Toyota of Cedar Park",
		Email:   "sales@toyotaofcedarpark.com",
		Phone:   "(512) 778-0711",
		Address: "5600 183A Toll Road, Cedar Park, TX 78641",
		Website: "https://www.toyotaofcedarpark.com",
	},
	{
		Name:    "Round Rock Honda",
		Email:   "internet@roundrockhonda.com",
		Phone:   "(512) 341-7300",
		Address: "2301 N Interstate 35, Round Rock, TX 78664",
		Website: "https://www.roundrockhonda.com",
	},
	{
		Name:    "Covert Ford",
		Email:   "sales@covertford.com",
		Phone:   "(512) 345-4343",
		Address: "11514 Research Blvd, Austin, TX 78759",
		Website: "https://www.covertford.com",
	},
	{
		Name:    "Nyle Maxwell Chrysler Dodge Jeep Ram",
		Email:   "sales@nylemaxwell.com",
		Phone:   "(512) 218-5500",
		Address: "12989 N Interstate 35, Austin, TX 78753",
		Website: "https://www.nylemaxwell.com",
	},
	{
		Name:    "Leander Chevrolet",
		Email:   "sales@leanderchevrolet.com",
		Phone:   "(512) 528-6100",
		Address: "16900 Ronald Reagan Blvd, Leander, TX 78641",
		Website: "https://www.leanderchevrolet.com",
	},
}

// webmailDomains are consumer mail providers excluded from dealer-email
// extraction, plus our own outbound domain.
var webmailDomains = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"aol.com":        true,
	"icloud.com":     true,
	"live.com":       true,
	"msn.com":        true,
	"me.com":         true,
	"protonmail.com": true,
	"proton.me":      true,
	"hagglehub.app":  true,
}

// vinWMIPrefixes are world-manufacturer-identifier prefixes we trust
// enough to decode a model year from the 10th VIN character. A VIN with
// an unrecognized prefix still populates the vin field but contributes
// no year.
var vinWMIPrefixes = []string{
	"1HG", "2HG", "19X", // Honda
	"JHM", "JH4", // Honda/Acura (Japan)
	"4T1", "2T1", "JTD", "JTE", // Toyota sedans/SUVs
	"1FA", "1FT", "1FM", // Ford
	"1GC", "1G1", "3GC", // Chevrolet
	"1C4", "1C6", "3C4", // Chrysler/Ram
	"JN1", "1N4", // Nissan
	"KM8", "5NP", // Hyundai
	"KNA", "KND", // Kia
	"3VW", "1VW", "WVW", // Volkswagen
	"WBA", "WBS", "5UX", // BMW
	"WDB", "WDD", "W1K", // Mercedes-Benz
	"JF1", "JF2", "4S3", "4S4", // Subaru
	"5YJ", "7SA", // Tesla
	"SAL", // Land Rover
	"YV1", "YV4", // Volvo
}

// vinYearCodes maps the 10th VIN character to a model year. Digits
// cover 2001-2009, letters cover the 2010-2030 cycle (I, O, Q, U, Z
// and 0 are never used in this position).
var vinYearCodes = map[byte]int{
	'1': 2001, '2': 2002, '3': 2003, '4': 2004, '5': 2005,
	'6': 2006, '7': 2007, '8': 2008, '9': 2009,
	'A': 2010, 'B': 2011, 'C': 2012, 'D': 2013, 'E': 2014,
	'F': 2015, 'G': 2016, 'H': 2017, 'J': 2018, 'K': 2019,
	'L': 2020, 'M': 2021, 'N': 2022, 'P': 2023, 'R': 2024,
	'S': 2025, 'T': 2026, 'V': 2027, 'W': 2028, 'X': 2029,
	'Y': 2030,
}
