package country

import "regexp"

type country struct {
	name string
	iso  string
}

var (
	uae          = country{"United Arab Emirates", "AE"}
	saudiArabia  = country{"Saudi Arabia", "SA"}
	qatar        = country{"Qatar", "QA"}
	kuwait       = country{"Kuwait", "KW"}
	bahrain      = country{"Bahrain", "BH"}
	oman         = country{"Oman", "OM"}
	jordan       = country{"Jordan", "JO"}
	lebanon      = country{"Lebanon", "LB"}
	egypt        = country{"Egypt", "EG"}
	morocco      = country{"Morocco", "MA"}
	tunisia      = country{"Tunisia", "TN"}
	algeria      = country{"Algeria", "DZ"}
	iraq         = country{"Iraq", "IQ"}
	syria        = country{"Syria", "SY"}
	palestine    = country{"Palestine", "PS"}
	israel       = country{"Israel", "IL"}
	iran         = country{"Iran", "IR"}
	unitedStates = country{"United States", "US"}
	canada       = country{"Canada", "CA"}
	uk           = country{"United Kingdom", "GB"}
	france       = country{"France", "FR"}
	germany      = country{"Germany", "DE"}
	italy        = country{"Italy", "IT"}
	spain        = country{"Spain", "ES"}
	netherlands  = country{"Netherlands", "NL"}
	belgium      = country{"Belgium", "BE"}
	switzerland  = country{"Switzerland", "CH"}
	austria      = country{"Austria", "AT"}
	sweden       = country{"Sweden", "SE"}
	norway       = country{"Norway", "NO"}
	denmark      = country{"Denmark", "DK"}
	finland      = country{"Finland", "FI"}
	poland       = country{"Poland", "PL"}
	portugal     = country{"Portugal", "PT"}
	ireland      = country{"Ireland", "IE"}
	greece       = country{"Greece", "GR"}
	russia       = country{"Russia", "RU"}
	ukraine      = country{"Ukraine", "UA"}
	turkey       = country{"Turkey", "TR"}
	india        = country{"India", "IN"}
	china        = country{"China", "CN"}
	hongKong     = country{"Hong Kong", "HK"}
	macau        = country{"Macau", "MO"}
	taiwan       = country{"Taiwan", "TW"}
	japan        = country{"Japan", "JP"}
	southKorea   = country{"South Korea", "KR"}
	singapore    = country{"Singapore", "SG"}
	malaysia     = country{"Malaysia", "MY"}
	thailand     = country{"Thailand", "TH"}
	indonesia    = country{"Indonesia", "ID"}
	philippines  = country{"Philippines", "PH"}
	vietnam      = country{"Vietnam", "VN"}
	australia    = country{"Australia", "AU"}
	newZealand   = country{"New Zealand", "NZ"}
	mexico       = country{"Mexico", "MX"}
	brazil       = country{"Brazil", "BR"}
	argentina    = country{"Argentina", "AR"}
	chile        = country{"Chile", "CL"}
	colombia     = country{"Colombia", "CO"}
	peru         = country{"Peru", "PE"}
	southAfrica  = country{"South Africa", "ZA"}
	nigeria      = country{"Nigeria", "NG"}
	kenya        = country{"Kenya", "KE"}
	ghana        = country{"Ghana", "GH"}
)

// phoneCodes maps international calling codes to countries.
// Codes are matched longest-first, see sortedPhoneCodes.
var phoneCodes = map[string]country{
	"+971": uae,
	"+966": saudiArabia,
	"+974": qatar,
	"+965": kuwait,
	"+973": bahrain,
	"+968": oman,
	"+962": jordan,
	"+961": lebanon,
	"+20":  egypt,
	"+212": morocco,
	"+216": tunisia,
	"+213": algeria,
	"+964": iraq,
	"+963": syria,
	"+970": palestine,
	"+972": israel,
	"+98":  iran,

	"+1":   unitedStates,
	"+44":  uk,
	"+33":  france,
	"+49":  germany,
	"+39":  italy,
	"+34":  spain,
	"+31":  netherlands,
	"+32":  belgium,
	"+41":  switzerland,
	"+43":  austria,
	"+46":  sweden,
	"+47":  norway,
	"+45":  denmark,
	"+358": finland,
	"+48":  poland,
	"+351": portugal,
	"+353": ireland,
	"+30":  greece,
	"+7":   russia,
	"+380": ukraine,
	"+90":  turkey,

	"+91":  india,
	"+86":  china,
	"+852": hongKong,
	"+853": macau,
	"+886": taiwan,
	"+81":  japan,
	"+82":  southKorea,
	"+65":  singapore,
	"+60":  malaysia,
	"+66":  thailand,
	"+62":  indonesia,
	"+63":  philippines,
	"+84":  vietnam,
	"+61":  australia,
	"+64":  newZealand,

	"+52": mexico,
	"+55": brazil,
	"+54": argentina,
	"+56": chile,
	"+57": colombia,
	"+51": peru,

	"+27":  southAfrica,
	"+234": nigeria,
	"+254": kenya,
	"+233": ghana,
}

// tldCountries maps domain suffixes (with the leading dot) to countries
var tldCountries = map[string]country{
	".ae": uae,
	".sa": saudiArabia,
	".qa": qatar,
	".kw": kuwait,
	".bh": bahrain,
	".om": oman,
	".jo": jordan,
	".lb": lebanon,
	".eg": egypt,
	".ma": morocco,
	".tn": tunisia,
	".dz": algeria,
	".iq": iraq,
	".sy": syria,
	".ps": palestine,
	".il": israel,
	".ir": iran,

	".uk":    uk,
	".co.uk": uk,
	".fr":    france,
	".de":    germany,
	".it":    italy,
	".es":    spain,
	".nl":    netherlands,
	".be":    belgium,
	".ch":    switzerland,
	".at":    austria,
	".se":    sweden,
	".no":    norway,
	".dk":    denmark,
	".fi":    finland,
	".pl":    poland,
	".pt":    portugal,
	".ie":    ireland,
	".gr":    greece,
	".ru":    russia,
	".ua":    ukraine,
	".tr":    turkey,

	".in": india,
	".cn": china,
	".hk": hongKong,
	".mo": macau,
	".tw": taiwan,
	".jp": japan,
	".kr": southKorea,
	".sg": singapore,
	".my": malaysia,
	".th": thailand,
	".id": indonesia,
	".ph": philippines,
	".vn": vietnam,
	".au": australia,
	".nz": newZealand,

	".us": unitedStates,
	".ca": canada,
	".mx": mexico,
	".br": brazil,
	".ar": argentina,
	".cl": chile,
	".co": colombia,
	".pe": peru,

	".za": southAfrica,
	".ng": nigeria,
	".ke": kenya,
	".gh": ghana,
}

type locationPattern struct {
	re      *regexp.Regexp
	country country
}

func location(pattern string, c country) locationPattern {
	return locationPattern{re: regexp.MustCompile(`(?i)` + pattern), country: c}
}

// locationPatterns are evaluated in order; the first hit wins.
// Gulf cities come first since they are the most common in the mailbox.
var locationPatterns = []locationPattern{
	location(`\bdubai\b`, uae),
	location(`\babu\s*dhabi\b`, uae),
	location(`\bsharjah\b`, uae),
	location(`\bajman\b`, uae),
	location(`\bu\.?a\.?e\.?\b`, uae),

	location(`\briyadh\b`, saudiArabia),
	location(`\bjeddah\b`, saudiArabia),
	location(`\bdammam\b`, saudiArabia),
	location(`\bksa\b`, saudiArabia),

	location(`\bdoha\b`, qatar),
	location(`\bkuwait\s*city\b`, kuwait),
	location(`\bmanama\b`, bahrain),
	location(`\bmuscat\b`, oman),

	location(`\bamman\b`, jordan),
	location(`\bbeirut\b`, lebanon),
	location(`\bcairo\b`, egypt),

	location(`\blondon\b`, uk),
	location(`\bnew\s*york\b`, unitedStates),
	location(`\blos\s*angeles\b`, unitedStates),
	location(`\bparis\b`, france),
	location(`\bberlin\b`, germany),
	location(`\bmilan\b`, italy),
	location(`\bmadrid\b`, spain),
	location(`\bamsterdam\b`, netherlands),
	location(`\bsingapore\b`, singapore),
	location(`\bhong\s*kong\b`, hongKong),
	location(`\btokyo\b`, japan),
	location(`\bseoul\b`, southKorea),
	location(`\bsydney\b`, australia),
	location(`\bmelbourne\b`, australia),
	location(`\bmumbai\b`, india),
	location(`\bnew\s*delhi\b`, india),
}
