package model

// Section 是 10-K 中被识别的章节。
type Section struct {
	Code string
	Name string
}

// 章节代码
const (
	ItemBusiness = "item_1"
	ItemRisk     = "item_1A"
	ItemMDA      = "item_7"
)

// Sections 是固定的章节分类，顺序即导入顺序。
var Sections = []Section{
	{Code: ItemBusiness, Name: "Business"},
	{Code: ItemRisk, Name: "Risk Factors"},
	{Code: ItemMDA, Name: "Management's Discussion and Analysis"},
}

// SectionName 返回章节代码对应的名称。
func SectionName(code string) (string, bool) {
	for _, s := range Sections {
		if s.Code == code {
			return s.Name, true
		}
	}
	return "", false
}
