package extract

// regionFlags maps flag-emoji sequences to region codes.
var regionFlags = map[string]string{
	"🇪🇺": "eu", "🇬🇧": "uk", "🇷🇺": "ru", "🇧🇾": "by", "🇺🇦": "ua", "🇰🇿": "kz",
	"🇦🇲": "am", "🇦🇿": "az", "🇬🇪": "ge", "🇰🇬": "kg", "🇺🇿": "uz",
	"🇺🇸": "us", "🇨🇦": "ca", "🇲🇽": "mx",
	"🇧🇷": "br", "🇦🇷": "ar", "🇨🇱": "cl", "🇵🇪": "pe", "🇨🇴": "co", "🇪🇨": "ec",
	"🇯🇵": "jp", "🇨🇳": "cn", "🇭🇰": "hk", "🇲🇴": "mo", "🇹🇼": "tw",
	"🇮🇳": "in", "🇸🇬": "sg", "🇰🇷": "kr", "🇻🇳": "vn", "🇹🇭": "th",
	"🇲🇾": "my", "🇮🇩": "id", "🇵🇭": "ph", "🇵🇰": "pk", "🇧🇩": "bd",
	"🇳🇵": "np", "🇱🇰": "lk", "🇹🇷": "tr",
	"🇦🇪": "ae", "🇶🇦": "qa", "🇰🇼": "kw", "🇧🇭": "bh", "🇴🇲": "om",
	"🇸🇦": "sa", "🇮🇱": "il", "🇯🇴": "jo", "🇱🇧": "lb", "🇮🇶": "iq",
	"🇪🇬": "eg", "🇿🇦": "za", "🇳🇬": "ng", "🇰🇪": "ke", "🇲🇦": "ma",
	"🇩🇿": "dz", "🇹🇳": "tn",
	"🇦🇺": "au", "🇳🇿": "nz",
	"🇨🇭": "ch",
}

// regionRule resolves a region either from an exact short token ("us",
// "ru") or from a word prefix ("росси", "америк"). Order matters: the
// first rule that fires wins, and "cn" must be tried before "ch".
type regionRule struct {
	code     string
	tokens   []string
	prefixes []string
}

var regionRules = []regionRule{
	{code: "eu", tokens: []string{"eu"}, prefixes: []string{"europe", "европ"}},
	{code: "uk", tokens: []string{"uk"}, prefixes: []string{"britain", "англи", "британи", "великобрит"}},
	{code: "ru", tokens: []string{"ru", "рф"}, prefixes: []string{"russia", "росси"}},
	{code: "by", tokens: []string{"by"}, prefixes: []string{"belarus", "беларус"}},
	{code: "ua", tokens: []string{"ua"}, prefixes: []string{"ukraine", "украин"}},
	{code: "kz", tokens: []string{"kz"}, prefixes: []string{"kazakhstan", "казах"}},
	{code: "us", tokens: []string{"us", "usa", "сша"}, prefixes: []string{"штат", "америк"}},
	{code: "ca", tokens: []string{"ca"}, prefixes: []string{"canada", "канада"}},
	{code: "mx", tokens: []string{"mx"}, prefixes: []string{"mexico", "мексик"}},
	{code: "br", tokens: []string{"br"}, prefixes: []string{"brazil", "бразил"}},
	{code: "hk", tokens: []string{"hk"}, prefixes: []string{"hongkong", "гонконг"}},
	{code: "cn", tokens: []string{"cn", "china", "китай", "кит"}},
	{code: "ch", tokens: []string{"ch"}, prefixes: []string{"китайск"}},
	{code: "jp", tokens: []string{"jp"}, prefixes: []string{"japan", "япони"}},
	{code: "in", tokens: []string{"in"}, prefixes: []string{"india", "инди"}},
	{code: "ae", tokens: []string{"ae", "uae"}, prefixes: []string{"emirates", "эмират", "дубай", "dubai"}},
	{code: "tr", tokens: []string{"tr"}, prefixes: []string{"turkey", "турци", "турец"}},
	{code: "sg", tokens: []string{"sg"}, prefixes: []string{"singapore", "сингапур"}},
	{code: "kr", tokens: []string{"kr"}, prefixes: []string{"korea", "коре"}},
	{code: "vn", tokens: []string{"vn"}, prefixes: []string{"vietnam", "вьетнам"}},
}

// baseColors are recognized verbatim; the canonical form equals the name.
var baseColors = []string{
	"Black", "White", "Blue", "Green", "Red", "Pink", "Purple", "Yellow",
	"Gold", "Silver", "Gray", "Grey", "Graphite", "Orange",
	"Midnight", "Starlight", "Titanium", "Space Black", "Space Gray", "Space Grey",
	"Natural", "Natural Titanium", "Blue Titanium", "White Titanium", "Black Titanium",
	"Desert", "Desert Titanium", "Ultramarine", "Lavender", "Cream", "Violet",
	"Coral", "Mint", "Lime", "Olive", "Navy", "Burgundy",
	"Sky Blue", "Light Gray", "Light Grey", "Icy Blue", "Silver Blue",
	"Silver Shadow", "Jade Green", "Pink Gold", "Jet Black",
	"Rose Gold", "Charcoal", "Black/Charcoal", "Dark Green", "Denim", "Sage",
	"Teal", "Moonstone", "Indigo", "Lemongrass", "Frost", "Obsidian", "Peony",
	"Porcelain", "Hazel", "Astral Trail", "Nebula Noir", "Rose Quartz",
	"Wintergreen", "Iris", "Bay", "Rose", "Aloe", "Brown", "Terra Cotta",
	"Ocean Cyan", "Dry Ice", "Marble Sands", "Marble Mist", "Earth", "Dune",
	"Moon", "Sandstone", "Deep Brown", "Transparent", "Clear", "Ivory",
	"Skyline", "Beige", "Fog", "Lunar Radiance",
	"Caramel", "Slate", "Nickel", "Strawberry Bronze", "Blackberry", "Moss",
	"Chrome Pearl", "Camouflage", "Light Blush",
	"Alpine Green", "Chrome Indigo", "Chrome Teal", "Starlight Blue",
	"Sterling Silver", "Volcanic Red", "Cobalt Blue", "Cosmic Red",
	"Ceramic Patina", "Ceramic Pink", "Vinca Blue",
	"Amber Silk", "Jasper Plum", "Kanzan Pink", "Prussian Blue", "Red Velvet",
	"Nickel Copper", "White/Gold", "Blue/Black", "Black/Copper",
	"Anthracite", "Cobalt", "Copper", "Emerald", "Raspberry", "Turquoise",
	"Lilac", "Mist Blue",
}

// colorSynonyms maps Russian names, transliterated slang and common typos
// to the canonical English color.
var colorSynonyms = map[string]string{
	"черный": "Black", "чёрный": "Black", "черная": "Black", "чёрная": "Black",
	"белый": "White", "белая": "White",
	"синий": "Blue", "синяя": "Blue", "голубой": "Blue", "голубая": "Blue",
	"зеленый": "Green", "зелёный": "Green", "зеленая": "Green", "зелёная": "Green",
	"красный": "Red", "красная": "Red",
	"розовый": "Pink", "розовая": "Pink",
	"фиолетовый": "Purple", "фиолетовая": "Purple",
	"лавандовый": "Lavender", "лавандовая": "Lavender",
	"желтый": "Yellow", "жёлтый": "Yellow", "желтая": "Yellow", "жёлтая": "Yellow",
	"оранжевый": "Orange", "оранжевая": "Orange", "оранж": "Orange",
	"золото": "Gold", "золотой": "Gold", "золотая": "Gold",
	"серебро": "Silver", "серебристый": "Silver", "серебристая": "Silver",
	"серый": "Gray", "серая": "Gray",
	"антрацит": "Anthracite", "антрацитовый": "Anthracite",
	"кобальт": "Cobalt", "кобальтовый": "Cobalt",
	"медный": "Copper", "медная": "Copper",
	"изумруд": "Emerald", "изумрудный": "Emerald", "изумрудная": "Emerald",
	"малиновый": "Raspberry", "малиновая": "Raspberry",
	"коралловый": "Coral", "коралловая": "Coral", "коралл": "Coral",
	"бежевый": "Beige", "бежевая": "Beige",
	"лиловый": "Lilac", "лиловая": "Lilac",
	"бирюзовый": "Turquoise", "бирюзовая": "Turquoise",
	"графит": "Graphite",
	"кремовый": "Cream",
	"фиолет": "Violet",
	"мята": "Mint", "мятный": "Mint", "мятная": "Mint",
	"лайм": "Lime", "лаймовый": "Lime", "лаймовая": "Lime",
	"олив": "Olive", "оливковый": "Olive", "оливковая": "Olive",
	"бордовый": "Burgundy", "бордовая": "Burgundy",
	"темно-синий": "Navy", "тёмно-синий": "Navy",
	"титан": "Titanium", "титановый": "Titanium",

	// slang
	"блэк": "Black", "блек": "Black",
	"вайт": "White", "уайт": "White",
	"блю": "Blue", "блу": "Blue",
	"грин": "Green", "ред": "Red", "пинк": "Pink",
	"пурпл": "Purple", "перпл": "Purple",
	"йеллоу": "Yellow",
	"голд": "Gold", "голден": "Gold",
	"сильвер": "Silver", "силвер": "Silver",

	// typos and variants
	"lavander":    "Lavender",
	"ультрамарин": "Ultramarine", "ultramarin": "Ultramarine",
	"ultra marine": "Ultramarine", "ultra blue": "Ultramarine",
	"натурал": "Natural", "натуральный": "Natural",
	"натурал титаниум": "Natural Titanium", "natural titanium": "Natural Titanium",
	"дезерт": "Desert", "дезерт титаниум": "Desert Titanium",
	"desert titanium": "Desert Titanium",
	"spaceblack":      "Space Black", "space black": "Space Black",
	"spacegray": "Space Gray", "space grey": "Space Gray", "space": "Space Gray",
	"jetblack": "Jet Black", "jet black": "Jet Black", "jatblack": "Jet Black",
	"terracotta": "Terra Cotta",
	"black charcoal": "Black/Charcoal",
	"spark orange":   "Orange",
	"rosegold":       "Rose Gold", "rose gold": "Rose Gold",
	"(product)red": "Red", "product red": "Red",
	"джинс": "Denim", "джинсов": "Denim",
	"сейдж": "Sage", "шалфей": "Sage",
	"blush": "Light Blush", "plum": "Light Blush",
	"mist": "Mist Blue",
	"camo": "Camouflage",
	"sand stone": "Sandstone", "sand gray": "Sandstone", "sand grey": "Sandstone",
	"песочный": "Sandstone", "песок": "Sandstone", "сэнд": "Sandstone",
	"iceblue": "Icy Blue", "icyblue": "Icy Blue",
	"strarlight": "Starlight",
	"bright blue": "Blue",

	// titanium + base color combos
	"titanium black": "Black Titanium", "titanium white": "White Titanium",
	"titanium silver": "Silver", "white silver": "White",
	"titanium gray": "Gray", "titanium grey": "Gray",
	"black ti": "Black Titanium", "ti black": "Black Titanium",
}

// colorCanon folds marketing shades onto color families for tolerant
// matching. Keyed and valued in lowercase. Silver and Starlight fold to
// white deliberately: catalogs and buyers use them interchangeably.
var colorCanon = map[string]string{
	"space black": "black", "jet black": "black", "charcoal": "black",
	"graphite": "black", "midnight": "black", "anthracite": "black",

	"sky blue": "blue", "mist blue": "blue", "icy blue": "blue",
	"navy": "blue", "silver blue": "blue", "ultramarine": "blue",
	"cobalt": "blue",

	"space gray": "gray", "space grey": "gray", "light gray": "gray",
	"light grey": "gray", "silver shadow": "gray", "grey": "gray",

	"silver": "white", "starlight": "white",

	"dark green": "green", "jade green": "green", "olive": "green",
	"mint": "green", "emerald": "green",

	"lavender": "purple", "violet": "purple", "lilac": "purple",

	"rose gold": "pink", "pink gold": "pink", "raspberry": "pink",

	"coral": "orange", "cream": "yellow", "copper": "brown",
	"beige": "sandstone", "turquoise": "mint",

	"natural titanium": "natural", "blue titanium": "blue",
	"white titanium": "white", "black titanium": "black",
	"titanium black": "black", "titanium white": "white",
	"desert titanium": "desert",
}

// bandRule maps watch band phrases to the canonical band type. Checked in
// order so longer phrases win over their substrings ("braided solo loop"
// before "solo loop").
type bandRule struct {
	phrase string
	canon  string
}

var bandRules = []bandRule{
	{"modern buckle", "Modern Buckle"},
	{"magnetic link", "Magnetic Link"},
	{"link bracelet", "Link Bracelet"},
	{"braided solo loop", "Braided Solo Loop"},
	{"solo loop", "Solo Loop"},
	{"sport loop", "Sport Loop"},
	{"sports band", "Sport Band"},
	{"sport band", "Sport Band"},
	{"спорт ремешок", "Sport Band"},
	{"trail loop", "Trail Loop"},
	{"charcoal loop", "Trail Loop"},
	{"alpine loop", "Alpine Loop"},
	{"alpine", "Alpine Loop"},
	{"ocean band", "Ocean Band"},
	{"ocean", "Ocean Band"},
	{"milanese loop", "Milanese Loop"},
	{"milanese", "Milanese Loop"},
}

// ramPlausible are the RAM sizes a phone/tablet/laptop line can plausibly
// carry; anything else is treated as storage or noise.
var ramPlausible = map[int]bool{
	2: true, 3: true, 4: true, 6: true, 8: true, 10: true, 12: true,
	16: true, 18: true, 20: true, 24: true, 32: true, 36: true, 48: true,
	64: true, 96: true, 128: true,
}

// allowedStorageGB are the storage sizes recognized as bare numbers.
var allowedStorageGB = map[int]bool{
	64: true, 128: true, 256: true, 512: true, 1024: true, 2048: true,
}
