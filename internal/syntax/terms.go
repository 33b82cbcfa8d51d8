package syntax

// Terms holds the curated term lists driving classification. The lists are
// data, not behavior: they are loaded once at startup and never mutated.
type Terms struct {
	Branded    []string `json:"branded"`
	Competitor []string `json:"competitor"`
	Irrelevant []string `json:"irrelevant"`
	Cooling    []string `json:"cooling"`
	Bamboo     []string `json:"bamboo"`
	Generic    []string `json:"generic"`
}

// DefaultTerms returns the built-in curation for the bamboo/cooling sheet
// niche. Entries are matched as case-insensitive substrings, so deliberate
// misspellings ("bambo", "bmaboo") and short fragments ("+", "rest") are
// part of the curation and must stay verbatim.
func DefaultTerms() Terms {
	return Terms{
		Branded: []string{"decolure"},
		Competitor: []string{
			"bamboo bay", "levoo", "pure bamboo", "shilucheng", "bedsure",
			"bc bella coterie", "gokotta", "california design den",
			"hotel sheets direct", "lb luxury bamboo market", "cozysmile",
			"linden & lain", "doz by sijo", "cgk unlimited", "andency",
			"dreamcare", "mayfair linen", "sweave", "linenwalas", "bampure",
			"cozylux", "meishang", "yawfold", "hcora", "naturefield",
			"david's home", "easehome", "cosy house collection", "ella jayne",
			"lavisun", "vipfree", "cleva", "caelorin", "bare home", "hyprest",
			"phf", "jself", "whitney home textile", "accuratex", "rosecret",
			"lane linen", "silkwings", "tafts", "sleep sanctuary", "rest",
			"cloudscape linen", "luxclub", "vonty", "belle terre", "bamtek",
			"mco", "kickoff home", "lyralith", "ankwos", "zaizaihome",
			"manyshofu", "cozyzenith", "jellymoni", "utopia bedding", "lbro2m",
			"mellanni", "nestl", "caromio", "elegant comfort", "jsd",
			"hearth & harbor", "danjor linens", "amyhomie", "dealuxe",
			"cariloha", "birch & moon", "cozy", "luxome", "sleephoria",
		},
		Irrelevant: []string{
			"blanket", "silk", "cotton", "christmas", "vegan", "flannel",
			"gingham", "jersey", "linen", "hotel", "branch", "ugg",
			"sateen", "satin", "eucalyptus", "alaskan", "pet", "mattress",
			"tencel", "cozy", "hemp", "wyoming", "allswell", "martha",
			"eczema", "southwestern", "virgin", "+",
		},
		Cooling: []string{"cooling", "cooling sheet", "bamboo cooling sheets"},
		Bamboo: []string{
			"bamboo", "bambu", "bamboo sheet", "bamboo sheets",
			"bamboo bed sheet", "bamboo bed sheets", "cooling",
			"cooling sheet", "bamboo cooling sheets", "sabanas bambu",
			"bambo", "bmaboo", "bambu sabanas",
		},
		Generic: []string{
			"sheet", "bed sheet", "deep pocket",
			"juegos de s sábanas y fundas de almohada",
			"colong", "shhet", "bedset",
		},
	}
}
