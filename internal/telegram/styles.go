package telegram

// Style is one catalog entry: the id goes into callback data and session
// records, the label is what the user sees.
type Style struct {
	ID    string
	Label string
}

var sessionStyles = []Style{
	{"haute_couture_runway", "Показ haute couture"},
	{"red_carpet_premiere", "Красная дорожка премьеры"},
	{"eiffel_tower_evening", "У Эйфелевой башни вечером"},
	{"santorini_sunrise", "Санторини на рассвете"},
	{"dubai_rooftop", "Дубай, вид с крыши"},
	{"tokyo_neon_street", "Токио, неоновая улица"},
	{"new_york_rooftop", "Нью-Йорк, съёмка на крыше"},
	{"milan_fashion_week", "Милан, закулисье Fashion Week"},
	{"paris_sidewalk_cafe", "Париж, уличное кафе"},
	{"london_rain_editorial", "Лондон, дождевой editorial"},
	{"yacht_deck_sunset", "Яхта на закате"},
	{"private_jet_cabin", "Каюта частного джета"},
	{"luxury_hotel_suite", "Люкс в отеле"},
	{"art_gallery_minimal", "Минималистичная галерея"},
	{"royal_ballroom", "Королевский бальный зал"},
	{"mediterranean_villa", "Вилла на Средиземном море"},
	{"alpine_ski_chalet", "Альпийское шале"},
	{"desert_supercar", "Суперкар в пустыне"},
	{"vineyard_golden_hour", "Виноградник на закате"},
	{"maldives_beach", "Мальдивы, рассвет на пляже"},
	{"tropical_rainforest_mist", "Туманный тропический лес"},
	{"snowy_forest_coat", "Заснеженный лес, пальто"},
	{"urban_loft_window", "Лофт у панорамных окон"},
	{"marble_spa_retreat", "Мраморный спа"},
	{"helipad_twilight", "Вертолётная площадка в сумерках"},
	{"rooftop_pool_party", "Вечеринка у бассейна на крыше"},
	{"seaside_boardwalk", "Прогулка у моря"},
	{"bridal_editorial", "Бридал-эдиториал"},
	{"street_style_editorial", "Street style съёмка"},
	{"art_deco_suite", "Ар-деко апартаменты"},
	{"museum_hall", "Зал музея"},
	{"cozy_chalet_fireplace", "Шале у камина"},
	{"greenhouse_bloom", "Оранжерея в цвету"},
	{"opera_house_grand_staircase", "Лестница оперного театра"},
	{"venice_grand_canal", "Венеция, Гранд-канал"},
	{"moroccan_riad", "Марокканский риад"},
	{"bali_rice_terrace", "Бали, рисовые террасы"},
	{"taj_mahal_dawn", "Тадж-Махал на рассвете"},
	{"safari_lodge", "Сафари-лодж"},
	{"renaissance_courtyard", "Двор эпохи Ренессанса"},
	{"hollywood_backlot", "Павильон Голливуда"},
	{"golden_hour_garden", "Сад в золотой час"},
	{"fantasy_world", "Фэнтези-мир"},
	{"cyberpunk_city", "Киберпанк-город"},
	{"sci_fi_spaceport", "Научно-фантастический космопорт"},
	{"steampunk_city", "Стимпанк-город"},
	{"mythic_forest", "Мифический лес"},
	{"celestial_palace", "Небесный дворец"},
	{"underwater_atlantis", "Подводная Атлантида"},
	{"neon_dreamscape", "Неоновый сон"},
	{"dragon_mountain_keep", "Крепость на горе драконов"},
	{"enchanted_castle", "Заколдованный замок"},
	{"floating_sky_islands", "Парящие острова в небе"},
	{"aurora_ice_palace", "Ледяной дворец и северное сияние"},
	{"ancient_ruins_magic", "Древние руины с магией"},
	{"galactic_couture", "Галактический кутюр"},
	{"futuristic_runway", "Футуристический подиум"},
	{"phoenix_rebirth", "Возрождение феникса"},
	{"lunar_base_ceremony", "Церемония на лунной базе"},
	{"frost_giant_peak", "Пик ледяных великанов"},
}

// StyleLabels maps style ids to display labels, e.g. for the examples service.
func StyleLabels() map[string]string {
	labels := make(map[string]string, len(sessionStyles))
	for _, s := range sessionStyles {
		labels[s.ID] = s.Label
	}
	return labels
}

func styleLabel(id string) string {
	for _, s := range sessionStyles {
		if s.ID == id {
			return s.Label
		}
	}
	return id
}

func knownStyle(id string) bool {
	for _, s := range sessionStyles {
		if s.ID == id {
			return true
		}
	}
	return false
}
