package catalog

const placeholderImage = "/placeholder.svg?height=400&width=400"

func testCategories() []Category {
	return []Category{
		{ID: "1", Name: "Weapons", Slug: "weapons"},
		{ID: "2", Name: "Armor", Slug: "armor"},
		{ID: "3", Name: "Characters", Slug: "characters"},
		{ID: "4", Name: "Vehicles", Slug: "vehicles"},
		{ID: "5", Name: "Accessories", Slug: "accessories"},
	}
}

func testProducts() []Product {
	return []Product{
		{ID: "prod_1", Name: "Legendary Dragon Sword", Description: "A legendary sword forged from dragon scales.", Price: 1200, Category: "weapons", Image: placeholderImage, Seller: "DragonForge", Rating: 4.8, Reviews: 124, Featured: true, Tags: []string{"legendary", "sword", "dragon"}, Stock: 5},
		{ID: "prod_2", Name: "Shadow Assassin Armor", Description: "Become one with the shadows.", Price: 2500, Category: "armor", Image: placeholderImage, Seller: "NightStalker", Rating: 4.9, Reviews: 89, Featured: true, Tags: []string{"armor", "stealth", "assassin"}, Stock: 3},
		{ID: "prod_3", Name: "Cyber Ninja Character", Description: "A futuristic ninja with cybernetic enhancements.", Price: 1800, Category: "characters", Image: placeholderImage, Seller: "FutureTech", Rating: 4.7, Reviews: 56, Tags: []string{"character", "ninja", "cyber"}, Stock: 10},
		{ID: "prod_4", Name: "Hover Racer X2000", Description: "The fastest hover vehicle in the game.", Price: 3200, Category: "vehicles", Image: placeholderImage, Seller: "SpeedDemon", Rating: 4.5, Reviews: 42, Featured: true, Discount: 15, Tags: []string{"vehicle", "hover", "racing"}, Stock: 2},
		{ID: "prod_5", Name: "Crown of the Ancient King", Description: "A majestic crown once worn by an ancient king.", Price: 950, Category: "accessories", Image: placeholderImage, Seller: "RoyalTreasures", Rating: 4.6, Reviews: 78, Tags: []string{"accessory", "crown", "royal"}, Stock: 7},
		{ID: "prod_6", Name: "Dual Plasma Blasters", Description: "Twin energy weapons that fire concentrated plasma bolts.", Price: 1500, Category: "weapons", Image: placeholderImage, Seller: "GalacticArms", Rating: 4.4, Reviews: 63, Tags: []string{"weapon", "blaster", "energy"}, Stock: 8},
		{ID: "prod_7", Name: "Elemental Mage Robes", Description: "Robes infused with elemental magic.", Price: 1750, Category: "armor", Image: placeholderImage, Seller: "ArcaneWeavers", Rating: 4.7, Reviews: 51, Tags: []string{"armor", "magic", "elemental"}, Stock: 4},
		{ID: "prod_8", Name: "Robot Companion Pet", Description: "A loyal robotic companion that follows you everywhere.", Price: 800, Category: "accessories", Image: placeholderImage, Seller: "CompanionBots", Rating: 4.9, Reviews: 112, Featured: true, Tags: []string{"accessory", "pet", "robot"}, Stock: 15},
	}
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
