package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/freshkitchen/mealdesk/backend/config"
	"github.com/freshkitchen/mealdesk/backend/internal/database"
	"github.com/freshkitchen/mealdesk/backend/internal/logging"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

var dishes = []types.DishRequest{
	{Name: "Overnight Oats", Category: "breakfast", Ingredients: []string{"oats", "milk", "chia", "berries"}, Allergens: []string{"dairy"}, Calories: 380, Protein: 14, Carbs: 58, Fats: 9, Price: 28},
	{Name: "Egg White Omelette", Category: "breakfast", Ingredients: []string{"egg whites", "spinach", "feta"}, Allergens: []string{"eggs", "dairy"}, Calories: 290, Protein: 31, Carbs: 6, Fats: 14, Price: 32},
	{Name: "Chicken Bowl", Category: "lunch", Ingredients: []string{"chicken breast", "brown rice", "broccoli"}, Calories: 520, Protein: 45, Carbs: 52, Fats: 12, Price: 42},
	{Name: "Beef Stir Fry", Category: "lunch_dinner", Ingredients: []string{"beef strips", "peppers", "soy sauce", "noodles"}, Allergens: []string{"soy", "gluten"}, Calories: 610, Protein: 40, Carbs: 60, Fats: 20, Price: 48},
	{Name: "Salmon Salad", Category: "dinner", Ingredients: []string{"salmon", "mixed greens", "quinoa", "lemon"}, Allergens: []string{"fish"}, Calories: 470, Protein: 36, Carbs: 30, Fats: 22, Price: 52},
	{Name: "Protein Bites", Category: "snack", Ingredients: []string{"dates", "peanut butter", "whey"}, Allergens: []string{"peanuts", "dairy"}, Calories: 210, Protein: 12, Carbs: 22, Fats: 9, Price: 18},
	{Name: "Green Smoothie", Category: "smoothie", Ingredients: []string{"spinach", "banana", "almond milk"}, Allergens: []string{"tree nuts"}, Calories: 190, Protein: 5, Carbs: 34, Fats: 4, Price: 20},
}

var templates = []types.PlanTemplateRequest{
	{Name: "Weekly Lunch", Days: 5, MealsPerDay: 1, Price: 200, Description: "Lunch on weekdays"},
	{Name: "Weekly Full Day", Days: 7, MealsPerDay: 3, Price: 780, Description: "Breakfast, lunch and dinner every day"},
	{Name: "Monthly Two Meals", Days: 26, MealsPerDay: 2, Price: 2100, Description: "Lunch and dinner six days a week"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(ctx, db, "migrations"); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	if cfg.AdminEmail != "" {
		auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry())
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to create admin", "error", err)
			os.Exit(1)
		}
	}

	dishService := service.NewDishService(db)
	created := 0
	for i := range dishes {
		_, err := dishService.Create(ctx, &dishes[i])
		switch {
		case errors.Is(err, service.ErrConflict):
			logger.Debug("dish already exists", "name", dishes[i].Name)
		case err != nil:
			logger.Error("failed to seed dish", "name", dishes[i].Name, "error", err)
			os.Exit(1)
		default:
			created++
		}
	}
	logger.Info("dishes seeded", "created", created, "total", len(dishes))

	templateService := service.NewPlanTemplateService(db, cfg.TypeRules())
	existing, _, err := templateService.List(ctx, types.NewPage(1, types.MaxPageSize))
	if err != nil {
		logger.Error("failed to list plan templates", "error", err)
		os.Exit(1)
	}
	names := make(map[string]bool, len(existing))
	for _, t := range existing {
		names[t.Name] = true
	}
	created = 0
	for i := range templates {
		if names[templates[i].Name] {
			continue
		}
		if _, err := templateService.Create(ctx, &templates[i]); err != nil {
			logger.Error("failed to seed plan template", "name", templates[i].Name, "error", err)
			os.Exit(1)
		}
		created++
	}
	logger.Info("plan templates seeded", "created", created, "total", len(templates))
}
