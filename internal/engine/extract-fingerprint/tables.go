// internal/engine/extract-fingerprint/tables.go
package extractfingerprint

// Surface-form tables for the regex extraction path. Each canonical
// entity lists every spelling the extractor recognizes, including
// non-Latin scripts, so multilingual feeds map to one label.

var personPatterns = map[string][]string{
	"trump":     {"trump", "donald trump", "ترامب"},
	"putin":     {"putin", "vladimir putin", "بوتين"},
	"xi":        {"xi jinping", "president xi", "شي جين بينغ"},
	"netanyahu": {"netanyahu", "نتنياهو"},
	"maduro":    {"maduro", "nicolas maduro", "مادورو"},
	"zelensky":  {"zelensky", "zelenskyy", "zelenskiy", "زيلينسكي"},
	"khamenei":  {"khamenei", "خامنئي"},
	"powell":    {"jerome powell", "powell", "fed chair"},
	"musk":      {"elon musk", "musk", "ماسك"},
}

var countryPatterns = map[string][]string{
	"usa":          {"usa", "u.s.", "united states", "america", "washington", "أمريكا", "الولايات المتحدة"},
	"china":        {"china", "chinese", "beijing", "الصين"},
	"russia":       {"russia", "russian", "moscow", "kremlin", "روسيا"},
	"iran":         {"iran", "iranian", "tehran", "إيران"},
	"venezuela":    {"venezuela", "venezuelan", "caracas", "فنزويلا"},
	"ukraine":      {"ukraine", "ukrainian", "kyiv", "kiev", "أوكرانيا"},
	"israel":       {"israel", "israeli", "إسرائيل"},
	"saudi arabia": {"saudi arabia", "saudi", "riyadh", "السعودية"},
	"turkey":       {"turkey", "turkish", "ankara", "تركيا"},
	"india":        {"india", "indian", "new delhi", "الهند"},
}

var orgPatterns = map[string][]string{
	"fed":    {"federal reserve", "the fed", "fed "},
	"opec":   {"opec", "أوبك"},
	"nato":   {"nato", "الناتو"},
	"hamas":  {"hamas", "حماس"},
	"tesla":  {"tesla", "تسلا"},
	"nvidia": {"nvidia", "إنفيديا"},
	"openai": {"openai", "chatgpt"},
	"aramco": {"aramco", "أرامكو"},
	"boeing": {"boeing", "بوينغ"},
}

var topicPatterns = map[string][]string{
	"oil":           {"oil", "crude", "brent", "wti", "النفط"},
	"gas":           {"natural gas", "lng", "gas prices", "الغاز"},
	"gold":          {"gold", "الذهب"},
	"dollar":        {"dollar", "usd", "greenback", "الدولار"},
	"bitcoin":       {"bitcoin", "btc", "crypto", "البيتكوين"},
	"stocks":        {"stocks", "stock market", "equities", "wall street", "الأسهم"},
	"tariffs":       {"tariff", "tariffs", "trade war", "الرسوم الجمركية"},
	"sanctions":     {"sanctions", "sanction", "embargo", "العقوبات"},
	"nuclear":       {"nuclear", "uranium", "enrichment", "النووي"},
	"ai":            {"artificial intelligence", " ai ", "machine learning", "الذكاء الاصطناعي"},
	"semiconductor": {"semiconductor", "chips", "chip ban", "الرقائق"},
	"missile":       {"missile", "ballistic", "صاروخ"},
	"drone":         {"drone", "uav", "مسيرة"},
	"inflation":     {"inflation", "cpi", "price rises", "التضخم"},
	"election":      {"election", "ballot", "الانتخابات"},
	"war":           {"war", "invasion", "offensive", "الحرب"},
}

// categoryRule maps an entity combination to a coarse category. Rules are
// evaluated top to bottom; the first hit wins, so more specific pairings
// come first.
type categoryRule struct {
	category  string
	countries []string
	topics    []string
	orgs      []string
}

var categoryRules = []categoryRule{
	{category: "us_china_trade", countries: []string{"usa", "china"}, topics: []string{"tariffs"}},
	{category: "us_china_tech", countries: []string{"usa", "china"}, topics: []string{"ai", "semiconductor"}},
	{category: "us_china_geopolitics", countries: []string{"usa", "china"}},
	{category: "russia_ukraine_war", countries: []string{"russia", "ukraine"}},
	{category: "russia_relations", countries: []string{"russia"}},
	{category: "iran_nuclear", countries: []string{"iran"}, topics: []string{"nuclear"}},
	{category: "iran_sanctions", countries: []string{"iran"}, topics: []string{"sanctions"}},
	{category: "iran_general", countries: []string{"iran"}},
	{category: "energy", topics: []string{"oil", "gas"}, orgs: []string{"opec", "aramco"}},
	{category: "crypto", topics: []string{"bitcoin"}},
	{category: "commodities", topics: []string{"gold"}},
	{category: "technology", topics: []string{"ai", "semiconductor"}, orgs: []string{"nvidia", "openai", "tesla"}},
	{category: "us_economy", countries: []string{"usa"}, topics: []string{"inflation", "dollar", "stocks"}, orgs: []string{"fed"}},
	{category: "us_politics", countries: []string{"usa"}, topics: []string{"election"}},
	{category: "us_domestic", countries: []string{"usa"}},
}

// greetingWords: a text made only of these is conversational noise, not a
// story, and is never worth extracting.
var greetingWords = map[string]bool{
	"hello":   true,
	"hi":      true,
	"hey":     true,
	"thanks":  true,
	"thank":   true,
	"you":     true,
	"good":    true,
	"morning": true,
	"evening": true,
	"please":  true,
	"ok":      true,
	"okay":    true,
}
