package scraper

import "strings"

var retailers = []struct {
	pattern string
	label   string
}{
	{"amazon.", "Amazon"},
	{"mercadolivre.", "Mercado Livre"},
	{"bestbuy.", "Best Buy"},
	{"walmart.", "Walmart"},
	{"newegg.", "Newegg"},
	{"target.", "Target"},
}

// DetectRetailer devolve o nome da loja para exibição
func DetectRetailer(url string) string {
	for _, r := range retailers {
		if strings.Contains(url, r.pattern) {
			return r.label
		}
	}
	return "Other"
}
