package models

var DishCategories = []string{"breakfast", "lunch", "dinner", "lunch_dinner", "snack", "smoothie", "juice"}

// ValidDishCategory reports whether c is one of DishCategories.
func ValidDishCategory(c string) bool {
	for _, known := range DishCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Dish is a menu catalog entry. Meal plan items copy its fields when a dish
// is assigned, so edits here never rewrite scheduled meals.
type Dish struct {
	Base
	Name        string           `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Category    string           `gorm:"size:50;not null;index" json:"category"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Allergens   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Calories    float64          `gorm:"type:float" json:"calories"`
	Protein     float64          `gorm:"type:float" json:"protein"`
	Carbs       float64          `gorm:"type:float" json:"carbs"`
	Fats        float64          `gorm:"type:float" json:"fats"`
	Price       float64          `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	IsActive    bool             `gorm:"not null" json:"is_active"`
}
