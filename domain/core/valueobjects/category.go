package valueobjects

// Category is the top-level food category of a shop.
type Category string

const (
	CategoryKorean   Category = "KOREAN"
	CategoryChinese  Category = "CHINESE"
	CategoryJapanese Category = "JAPANESE"
	CategoryWestern  Category = "WESTERN"
	CategoryChicken  Category = "CHICKEN"
	CategoryPizza    Category = "PIZZA"
	CategorySnack    Category = "SNACK"
	CategoryCafe     Category = "CAFE_DESSERT"
	CategoryAsian    Category = "ASIAN"
)

// DetailCategory narrows a Category.
type DetailCategory string

const (
	DetailBibimbap     DetailCategory = "BIBIMBAP"
	DetailGukbap       DetailCategory = "GUKBAP"
	DetailKoreanBBQ    DetailCategory = "KOREAN_BBQ"
	DetailStew         DetailCategory = "STEW"
	DetailJajangmyeon  DetailCategory = "JAJANGMYEON"
	DetailJjamppong    DetailCategory = "JJAMPPONG"
	DetailTangsuyuk    DetailCategory = "TANGSUYUK"
	DetailSushi        DetailCategory = "SUSHI"
	DetailRamen        DetailCategory = "RAMEN"
	DetailDonkatsu     DetailCategory = "DONKATSU"
	DetailPasta        DetailCategory = "PASTA"
	DetailSteak        DetailCategory = "STEAK"
	DetailBurger       DetailCategory = "BURGER"
	DetailFriedChicken DetailCategory = "FRIED_CHICKEN"
	DetailSeasoned     DetailCategory = "SEASONED_CHICKEN"
	DetailPizza        DetailCategory = "PIZZA"
	DetailTteokbokki   DetailCategory = "TTEOKBOKKI"
	DetailKimbap       DetailCategory = "KIMBAP"
	DetailCoffee       DetailCategory = "COFFEE"
	DetailBakery       DetailCategory = "BAKERY"
	DetailPho          DetailCategory = "PHO"
	DetailCurry        DetailCategory = "CURRY"
)

var detailCategories = map[Category][]DetailCategory{
	CategoryKorean:   {DetailBibimbap, DetailGukbap, DetailKoreanBBQ, DetailStew},
	CategoryChinese:  {DetailJajangmyeon, DetailJjamppong, DetailTangsuyuk},
	CategoryJapanese: {DetailSushi, DetailRamen, DetailDonkatsu},
	CategoryWestern:  {DetailPasta, DetailSteak, DetailBurger},
	CategoryChicken:  {DetailFriedChicken, DetailSeasoned},
	CategoryPizza:    {DetailPizza},
	CategorySnack:    {DetailTteokbokki, DetailKimbap},
	CategoryCafe:     {DetailCoffee, DetailBakery},
	CategoryAsian:    {DetailPho, DetailCurry},
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	_, ok := detailCategories[c]
	return ok
}

// Allows reports whether d belongs to c.
func (c Category) Allows(d DetailCategory) bool {
	for _, allowed := range detailCategories[c] {
		if allowed == d {
			return true
		}
	}
	return false
}
