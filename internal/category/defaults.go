package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/model"
)

// Preset はデフォルトカテゴリの定義。
type Preset struct {
	Name  string
	Color string
	Icon  string
}

// ExpensePresets は初回ログイン時に作成される支出カテゴリ。
var ExpensePresets = []Preset{
	{Name: "サブスク", Color: "#FF6384", Icon: "credit-card"},
	{Name: "ネットショッピング", Color: "#36A2EB", Icon: "shopping-bag"},
	{Name: "家賃", Color: "#FFCE56", Icon: "home"},
	{Name: "通信費", Color: "#4BC0C0", Icon: "wifi"},
	{Name: "ガス", Color: "#9966FF", Icon: "fire"},
	{Name: "水道", Color: "#FF9F40", Icon: "water"},
	{Name: "電気代", Color: "#FF6384", Icon: "bolt"},
	{Name: "病院", Color: "#36A2EB", Icon: "hospital"},
	{Name: "スポーツ", Color: "#FFCE56", Icon: "running"},
	{Name: "レジャー", Color: "#4BC0C0", Icon: "umbrella-beach"},
	{Name: "ダイエット", Color: "#9966FF", Icon: "weight"},
	{Name: "薬局", Color: "#FF9F40", Icon: "pills"},
	{Name: "生活用品", Color: "#FF6384", Icon: "shopping-basket"},
	{Name: "交際費", Color: "#36A2EB", Icon: "users"},
	{Name: "交通費", Color: "#FFCE56", Icon: "car"},
	{Name: "コンビニ", Color: "#4BC0C0", Icon: "store"},
	{Name: "ファッション", Color: "#9966FF", Icon: "tshirt"},
	{Name: "美容", Color: "#FF9F40", Icon: "spa"},
	{Name: "食費", Color: "#FF6384", Icon: "utensils"},
}

// IncomePresets は初回ログイン時に作成される収入カテゴリ。
var IncomePresets = []Preset{
	{Name: "給与", Color: "#4CAF50", Icon: "money-bill"},
	{Name: "ボーナス", Color: "#8BC34A", Icon: "gift"},
	{Name: "副業収入", Color: "#CDDC39", Icon: "briefcase"},
	{Name: "フリーランス収入", Color: "#FFC107", Icon: "laptop-code"},
	{Name: "投資収入", Color: "#FF9800", Icon: "chart-line"},
	{Name: "配当金", Color: "#FF5722", Icon: "hand-holding-usd"},
	{Name: "不動産収入", Color: "#795548", Icon: "building"},
	{Name: "年金", Color: "#9E9E9E", Icon: "user-tie"},
	{Name: "利子収入", Color: "#607D8B", Icon: "percent"},
	{Name: "株式売却益", Color: "#2196F3", Icon: "chart-bar"},
	{Name: "臨時収入", Color: "#03A9F4", Icon: "star"},
	{Name: "贈与・お祝い", Color: "#00BCD4", Icon: "gift"},
	{Name: "保険金", Color: "#009688", Icon: "shield-alt"},
	{Name: "税金還付", Color: "#4CAF50", Icon: "money-check"},
	{Name: "その他収入", Color: "#FF5722", Icon: "plus-circle"},
}

// DefaultCategories はuserID用のデフォルトカテゴリを新しいUUIDで生成する。
// 一覧の並び順が定義順になるよう、作成日時を1マイクロ秒ずつずらす。
func DefaultCategories(userID string, now time.Time) []*model.Category {
	categories := make([]*model.Category, 0, len(ExpensePresets)+len(IncomePresets))
	i := 0
	add := func(presets []Preset, categoryType model.CategoryType) {
		for _, p := range presets {
			categories = append(categories, &model.Category{
				ID:        uuid.NewString(),
				UserID:    userID,
				Name:      p.Name,
				Type:      categoryType,
				Color:     p.Color,
				Icon:      p.Icon,
				CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			})
			i++
		}
	}
	add(ExpensePresets, model.CategoryTypeExpense)
	add(IncomePresets, model.CategoryTypeIncome)
	return categories
}
