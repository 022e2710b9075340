package names

// builtin maps vehicle code names (ground names without the "tankModels/"
// prefix) to their display names per language.
var builtin = map[string]map[string]string{
	// Ground
	"us_m4a1_1942_sherman":         {"en": "M4A1", "ru": "M4A1"},
	"us_m4a3e8_76w_sherman":        {"en": "M4A3E8", "ru": "M4A3E8"},
	"us_m1_abrams":                 {"en": "M1 Abrams", "ru": "M1 Abrams"},
	"us_m1a2_sep_abrams":           {"en": "M1A2 SEP", "ru": "M1A2 SEP"},
	"us_m18_gmc":                   {"en": "M18 GMC", "ru": "M18 GMC"},
	"germ_pzkpfw_iv_ausf_h":        {"en": "Pz.IV H", "ru": "Pz.IV H"},
	"germ_pzkpfw_vi_ausf_e_tiger":  {"en": "Tiger H1", "ru": "Тигр H1"},
	"germ_pzkpfw_v_ausf_a_panther": {"en": "Panther A", "ru": "Пантера A"},
	"germ_leopard_2a6":             {"en": "Leopard 2A6", "ru": "Леопард 2A6"},
	"ussr_t_34_1941":               {"en": "T-34 (1941)", "ru": "Т-34 (1941)"},
	"ussr_t_34_85_d_5t":            {"en": "T-34-85 (D-5T)", "ru": "Т-34-85 (Д-5Т)"},
	"ussr_is_2_1944":               {"en": "IS-2 mod. 1944", "ru": "ИС-2 обр. 1944"},
	"ussr_t_72b3":                  {"en": "T-72B3", "ru": "Т-72Б3"},
	"ussr_t_80bvm":                 {"en": "T-80BVM", "ru": "Т-80БВМ"},
	"uk_challenger_2":              {"en": "Challenger 2", "ru": "Challenger 2"},
	"jp_type_90":                   {"en": "Type 90", "ru": "Тип 90"},

	// Air
	"p-51d-5":       {"en": "P-51D-5", "ru": "P-51D-5"},
	"p-47d":         {"en": "P-47D", "ru": "P-47D"},
	"f-86f-25":      {"en": "F-86F-25", "ru": "F-86F-25"},
	"f-16a":         {"en": "F-16A", "ru": "F-16A"},
	"bf-109f-4":     {"en": "Bf 109 F-4", "ru": "Bf 109 F-4"},
	"fw-190a-5":     {"en": "Fw 190 A-5", "ru": "Fw 190 A-5"},
	"me-262a-1a":    {"en": "Me 262 A-1a", "ru": "Me 262 A-1a"},
	"yak-3":         {"en": "Yak-3", "ru": "Як-3"},
	"la-7":          {"en": "La-7", "ru": "Ла-7"},
	"il-2_1942":     {"en": "IL-2 (1942)", "ru": "Ил-2 (1942)"},
	"mig-15":        {"en": "MiG-15", "ru": "МиГ-15"},
	"mig-21_smt":    {"en": "MiG-21SMT", "ru": "МиГ-21СМТ"},
	"su-27":         {"en": "Su-27", "ru": "Су-27"},
	"spitfire_mk9c": {"en": "Spitfire LF Mk IX", "ru": "Spitfire LF Mk IX"},
	"a6m2_zero":     {"en": "A6M2", "ru": "A6M2"},
}
