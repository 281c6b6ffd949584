package charts

// worldNames maps ISO 3166 alpha-3 codes to the region names used by the
// echarts world map.
var worldNames = map[string]string{
	"ARG": "Argentina",
	"AUS": "Australia",
	"AUT": "Austria",
	"BEL": "Belgium",
	"BGR": "Bulgaria",
	"BRA": "Brazil",
	"CAN": "Canada",
	"CHE": "Switzerland",
	"CHL": "Chile",
	"CHN": "China",
	"COL": "Colombia",
	"CRI": "Costa Rica",
	"CYP": "Cyprus",
	"CZE": "Czech Rep.",
	"DEU": "Germany",
	"DNK": "Denmark",
	"ESP": "Spain",
	"EST": "Estonia",
	"FIN": "Finland",
	"FRA": "France",
	"GBR": "United Kingdom",
	"GRC": "Greece",
	"HRV": "Croatia",
	"HUN": "Hungary",
	"IDN": "Indonesia",
	"IND": "India",
	"IRL": "Ireland",
	"ISL": "Iceland",
	"ISR": "Israel",
	"ITA": "Italy",
	"JPN": "Japan",
	"KAZ": "Kazakhstan",
	"KOR": "Korea",
	"LTU": "Lithuania",
	"LUX": "Luxembourg",
	"LVA": "Latvia",
	"MEX": "Mexico",
	"NLD": "Netherlands",
	"NOR": "Norway",
	"NZL": "New Zealand",
	"PER": "Peru",
	"POL": "Poland",
	"PRT": "Portugal",
	"ROU": "Romania",
	"RUS": "Russia",
	"SAU": "Saudi Arabia",
	"SVK": "Slovakia",
	"SVN": "Slovenia",
	"SWE": "Sweden",
	"TUR": "Turkey",
	"UKR": "Ukraine",
	"USA": "United States",
	"ZAF": "South Africa",
}

// WorldName returns the map region for an area code, or the code itself
// when the map has no region for it.
func WorldName(code string) string {
	if n, ok := worldNames[code]; ok {
		return n
	}
	return code
}
