package knowledge

import "github.com/skyviz/vizflow/core"

// SeedLowAltitudeKB returns a knowledge base pre-loaded with curated low
// altitude economy snippets. Used by the CLI and examples.
func SeedLowAltitudeKB() *InMemoryKB {
	kb := NewInMemoryKB()
	for _, s := range []Snippet{
		{
			ID:      "kb_trend_shenzhen",
			Content: "Shenzhen drone flight volume grew steadily from 2021 to 2024, led by logistics sorties in Nanshan and Bao'an districts.",
			Tags:    []string{"shenzhen", "trend", "logistics", "drone"},
		},
		{
			ID:      "kb_evtol",
			Content: "eVTOL passenger trials began in 2023 and account for a small but fast-growing share of low altitude flights.",
			Tags:    []string{"evtol", "trend", "passenger"},
		},
		{
			ID:      "kb_regions",
			Content: "Guangzhou and Zhuhai trail Shenzhen in total flights but lead in survey and tourism purposes respectively.",
			Tags:    []string{"guangzhou", "zhuhai", "comparison", "survey", "tourism"},
		},
		{
			ID:      "kb_purpose_mix",
			Content: "Across regions, logistics makes up roughly 60% of sorties, patrol 20%, survey 12% and tourism 8%.",
			Tags:    []string{"distribution", "purpose", "logistics", "patrol"},
		},
		{
			ID:      "kb_duration",
			Content: "Average flight duration is 24 minutes for drones, 38 minutes for eVTOL and 52 minutes for helicopters.",
			Tags:    []string{"duration", "aircraft", "drone", "helicopter"},
		},
	} {
		kb.Add(s)
	}
	return kb
}

// SeedLowAltitudeGraph returns a graph store pre-loaded with the curated
// domain graph used by the CLI and examples.
func SeedLowAltitudeGraph() *InMemoryGraph {
	g := NewInMemoryGraph()
	for _, e := range []core.GraphEntity{
		{Name: "drone", Kind: "aircraft", Description: "uncrewed multirotor or fixed-wing aircraft"},
		{Name: "eVTOL", Kind: "aircraft", Description: "electric vertical takeoff and landing aircraft"},
		{Name: "helicopter", Kind: "aircraft", Description: "crewed rotary-wing aircraft"},
		{Name: "logistics", Kind: "purpose", Description: "parcel and cargo delivery flights"},
		{Name: "patrol", Kind: "purpose", Description: "inspection and security flights"},
		{Name: "survey", Kind: "purpose", Description: "mapping and surveying flights"},
		{Name: "tourism", Kind: "purpose", Description: "sightseeing flights"},
		{Name: "Shenzhen", Kind: "region", Description: "leading low altitude economy pilot city"},
		{Name: "Guangzhou", Kind: "region", Description: "major operating region in the Pearl River Delta"},
		{Name: "Zhuhai", Kind: "region", Description: "coastal operating region"},
		{Name: "flight volume", Kind: "metric", Description: "number of sorties in a period"},
		{Name: "low altitude economy", Kind: "concept", Description: "economic activity below 1000m airspace"},
	} {
		g.AddEntity(e)
	}

	g.AddRelation("Shenzhen", "leads_in", "logistics")
	g.AddRelation("Shenzhen", "operates", "drone")
	g.AddRelation("Guangzhou", "leads_in", "survey")
	g.AddRelation("Zhuhai", "leads_in", "tourism")
	g.AddRelation("drone", "used_for", "logistics")
	g.AddRelation("drone", "used_for", "patrol")
	g.AddRelation("eVTOL", "used_for", "tourism")
	g.AddRelation("helicopter", "used_for", "survey")
	g.AddRelation("flight volume", "measures", "low altitude economy")
	g.AddRelation("low altitude economy", "includes", "drone")
	g.AddRelation("low altitude economy", "includes", "eVTOL")

	return g
}
