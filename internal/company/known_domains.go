package company

// knownDomains maps agency and brand domains to their display names.
// Subdomains are resolved by walking up to a listed parent.
var knownDomains = map[string]string{
	// Global PR agencies
	"edelman.com":           "Edelman",
	"bursonglobal.com":      "Burson Global",
	"mena.bursonglobal.com": "Burson Global MENA",
	"ae.bursonglobal.com":   "Burson Global UAE",
	"webershandwick.com":    "Weber Shandwick",
	"golin.com":             "Golin",
	"golin-mena.com":        "Golin MENA",
	"fleishman.com":         "FleishmanHillard",
	"fleishmanhillard.com":  "FleishmanHillard",
	"hillandknowlton.com":   "Hill & Knowlton",
	"hkstrategies.com":      "H+K Strategies",
	"ketchum.com":           "Ketchum",
	"mslgroup.com":          "MSL Group",
	"ogilvy.com":            "Ogilvy",
	"ogilvypr.com":          "Ogilvy PR",
	"bcw-global.com":        "BCW Global",
	"cohnwolfe.com":         "Cohn & Wolfe",
	"prweek.com":            "PRWeek",
	"teamlewis.com":         "TEAM LEWIS",
	"media.teamlewis.com":   "TEAM LEWIS",
	"currentglobal.com":     "Current Global",
	"redhavas.com":          "Red Havas",
	"havas.com":             "Havas",
	"havaspr.com":           "Havas PR",
	"ruderfinninc.com":      "Ruder Finn",
	"ruderfinn.com":         "Ruder Finn",
	"icrinc.com":            "ICR",
	"sardverb.com":          "Sard Verbinnen",
	"fticonsulting.com":     "FTI Consulting",
	"brunswickgroup.com":    "Brunswick Group",
	"finsbury.com":          "Finsbury",
	"prosek.com":            "Prosek Partners",
	"sloanecompany.com":     "Sloane & Company",
	"joelefrank.com":        "Joele Frank",
	"teneo.com":             "Teneo",
	"publicisgroupe.com":    "Publicis Groupe",
	"mccann.com":            "McCann",
	"wpp.com":               "WPP",
	"omnicomgroup.com":      "Omnicom Group",
	"ipghealth.com":         "IPG Health",
	"interpublic.com":       "Interpublic Group",
	"dentsu.com":            "Dentsu",

	// Middle East agencies
	"brazenmena.com":         "Brazen MENA",
	"gambit.ae":              "Gambit Communications",
	"jspr.ae":                "JS PR",
	"activedmc.com":          "Active DMC",
	"matrixdubai.com":        "Matrix PR",
	"matrixpr.ae":            "Matrix PR",
	"actionprgroup.com":      "Action PR Group",
	"actionglobalcomms.com":  "Action Global Communications",
	"fourpr.com":             "Four Communications",
	"fourcommunications.com": "Four Communications",
	"aaborchid.com":          "Orchid Communications",
	"sevenme.com":            "Seven Media",
	"sevenmedia.ae":          "Seven Media",
	"asaborini.com":          "Asda'a BCW",
	"asdaa-bcw.com":          "Asda'a BCW",
	"prochoicecomms.com":     "ProChoice Communications",
	"therocketscience.com":   "Rocket Science",
	"tishcomms.com":          "TISH Communications",
	"traccs.net":             "TRACCS",
	"w7worldwide.com":        "W7Worldwide",
	"watermelon.ae":          "Watermelon Communications",
	"crestadv.com":           "Crest Communications",
	"houseofcomms.com":       "House of Comms",
	"theqode.com":            "The Qode",
	"sherwoodcomms.com":      "Sherwood Communications",
	"epressrelease.me":       "ePressPR",
	"katchthis.com":          "Katch Communications",
	"cisionone.cision.com":   "Cision",
	"cision.com":             "Cision",

	// Tech
	"google.com":     "Google",
	"microsoft.com":  "Microsoft",
	"apple.com":      "Apple",
	"amazon.com":     "Amazon",
	"meta.com":       "Meta",
	"facebook.com":   "Meta",
	"netflix.com":    "Netflix",
	"salesforce.com": "Salesforce",
	"oracle.com":     "Oracle",
	"ibm.com":        "IBM",
	"intel.com":      "Intel",
	"nvidia.com":     "NVIDIA",
	"adobe.com":      "Adobe",
	"cisco.com":      "Cisco",
	"samsung.com":    "Samsung",
	"huawei.com":     "Huawei",
	"dell.com":       "Dell",
	"hp.com":         "HP",
	"lenovo.com":     "Lenovo",

	// Hospitality and travel
	"marriott.com":       "Marriott International",
	"hilton.com":         "Hilton",
	"ihg.com":            "IHG Hotels & Resorts",
	"accor.com":          "Accor",
	"hyatt.com":          "Hyatt",
	"fourseasons.com":    "Four Seasons",
	"fairmont.com":       "Fairmont Hotels",
	"raffles.com":        "Raffles Hotels",
	"ritzcarlton.com":    "The Ritz-Carlton",
	"starwoodhotels.com": "Starwood Hotels",
	"emirates.com":       "Emirates",
	"etihad.ae":          "Etihad Airways",
	"qatarairways.com":   "Qatar Airways",
	"saudia.com":         "Saudia",
	"flydubai.com":       "flydubai",

	// Automotive
	"bmw.com":           "BMW",
	"mercedes-benz.com": "Mercedes-Benz",
	"audi.com":          "Audi",
	"volkswagen.com":    "Volkswagen",
	"toyota.com":        "Toyota",
	"honda.com":         "Honda",
	"nissan.com":        "Nissan",
	"ford.com":          "Ford",
	"gm.com":            "General Motors",
	"tesla.com":         "Tesla",
	"porsche.com":       "Porsche",
	"ferrari.com":       "Ferrari",
	"lamborghini.com":   "Lamborghini",
	"bentley.com":       "Bentley",
	"rollsroyce.com":    "Rolls-Royce",
	"landrover.com":     "Land Rover",
	"jaguar.com":        "Jaguar",

	// Finance
	"jpmorgan.com":        "JP Morgan",
	"goldmansachs.com":    "Goldman Sachs",
	"morganstanley.com":   "Morgan Stanley",
	"bankofamerica.com":   "Bank of America",
	"citi.com":            "Citi",
	"citibank.com":        "Citibank",
	"hsbc.com":            "HSBC",
	"barclays.com":        "Barclays",
	"deutschebank.com":    "Deutsche Bank",
	"ubs.com":             "UBS",
	"creditsuisse.com":    "Credit Suisse",
	"visa.com":            "Visa",
	"mastercard.com":      "Mastercard",
	"americanexpress.com": "American Express",
	"paypal.com":          "PayPal",
}

// personalDomains are consumer mailbox providers that never identify an employer
var personalDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"aol.com":        {},
	"icloud.com":     {},
	"me.com":         {},
	"mac.com":        {},
	"live.com":       {},
	"msn.com":        {},
	"protonmail.com": {},
	"zoho.com":       {},
	"yandex.com":     {},
	"mail.com":       {},
	"gmx.com":        {},
	"inbox.com":      {},
}

var (
	// labels that sit before a country TLD in compound suffixes like co.uk
	compoundCompanyLabels = map[string]bool{"co": true, "com": true, "org": true, "net": true}
	compoundSLDLabels     = map[string]bool{"co": true, "com": true, "org": true, "net": true, "gov": true, "edu": true, "ac": true}

	infraLabels = map[string]bool{"www": true, "mail": true, "email": true, "smtp": true, "imap": true, "pop": true}
)
