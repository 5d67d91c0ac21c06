package evaluation

// DefaultTestCases returns the fixture set built from the "Biodeutsch"
// reference article. Each case exercises a different query type against
// content the ingestion pipeline is expected to have stored.
func DefaultTestCases() []TestCase {
	meta := map[string]interface{}{
		"source": "article1.md",
		"title":  "Biodeutsch",
	}

	return []TestCase{
		{
			Query: "Was ist biodeutsch?",
			ExpectedDocs: []ExpectedDoc{{
				Content:  "Das Schlagwort biodeutsch (auch bio-deutsch) bezeichnet seit den 1990er Jahren ethnische Deutsche.",
				Metadata: meta,
			}},
			QueryType:   "definition",
			Description: "Testing basic term definition retrieval",
		},
		{
			Query: "Wann wurde der Begriff biodeutsch erstmals verwendet?",
			ExpectedDocs: []ExpectedDoc{{
				Content:  "Zum ersten Mal verwendete der deutsch-türkische Karikaturist Muhsin Omurca die Bezeichnung „Bio-Deutscher“ 1996 in einem Cartoon in der taz",
				Metadata: meta,
			}},
			QueryType:   "factual",
			Description: "Testing origin date retrieval",
		},
		{
			Query: "Wer verbreitete biodeutsch in einem satirischen Kurzfilm?",
			ExpectedDocs: []ExpectedDoc{{
				Content:  "Das Kölner Netzwerk Kanak Attak popularisierte die Bezeichnungen „bio-deutsch“ und „Bio-Deutsche“ 2002 im satirischen Kurzfilm Weißes Ghetto",
				Metadata: meta,
			}},
			QueryType:   "factual",
			Description: "Testing cultural reference recognition",
		},
		{
			Query: "Warum wurde biodeutsch zum Unwort des Jahres 2024 gewählt?",
			ExpectedDocs: []ExpectedDoc{{
				Content:  "Als politischer Kampfbegriff behauptet er dort eine angeblich existierende gemeinsame genetisch-biologische Herkunft aller „echten“ Deutschen. Es wurde zum Unwort des Jahres 2024 gewählt.",
				Metadata: meta,
			}},
			QueryType:   "context",
			Description: "Testing sociolinguistic impact analysis",
		},
		{
			Query: "Welcher Politiker verwendete biodeutsch in seinem Buchtitel?",
			ExpectedDocs: []ExpectedDoc{{
				Content:  "Der iranischstämmige Grünen-Politiker Omid Nouripour verwendet die Bezeichnung in seinem Buch Kleines Lexikon für MiMiMis und Bio-Deutsche (2014) scherzhaft.",
				Metadata: meta,
			}},
			QueryType:   "factual",
			Description: "Testing literary reference identification",
		},
		{
			Query: "Wann wurde biodeutsch in den Duden aufgenommen?",
			ExpectedDocs: []ExpectedDoc{{
				Content:  "Das Wort wurde 2017 in den Duden aufgenommen",
				Metadata: meta,
			}},
			QueryType:   "factual",
			Description: "Testing lexicographical fact retrieval",
		},
	}
}
