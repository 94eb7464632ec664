package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

type account struct {
	id, username, password, email, first, last string
	role                                       auth.Role
	created                                    string
}

var accounts = []account{
	{"1", "admin", "admin123", "admin@storefront.local", "Admin", "System", auth.RoleAdmin, "2024-01-01T00:00:00Z"},
	{"2", "user", "user123", "john.doe@example.com", "John", "Doe", auth.RoleUser, "2024-01-15T10:30:00Z"},
	{"3", "guest", "guest123", "jane.smith@example.com", "Jane", "Smith", auth.RoleGuest, "2024-02-01T14:20:00Z"},
}

// Users returns the demo accounts with bcrypt hashed passwords.
func Users() ([]models.User, error) {
	out := make([]models.User, 0, len(accounts))
	for _, a := range accounts {
		h, err := hash.HashPassword(a.password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.username, err)
		}
		created := at(a.created)
		out = append(out, models.User{
			ID: a.id, Username: a.username, Email: a.email, FirstName: a.first, LastName: a.last,
			PasswordHash: h, Role: a.role, CreatedAt: created, UpdatedAt: created,
		})
	}
	return out, nil
}

func Categories() []models.Category {
	return []models.Category{
		{ID: "1", Name: "Electronics", Slug: "electronics", Description: "Devices and gadgets"},
		{ID: "2", Name: "Clothing", Slug: "clothing", Description: "Fashion for everyone"},
		{ID: "3", Name: "Books", Slug: "books", Description: "Books and literature"},
		{ID: "4", Name: "Home & Garden", Slug: "home-garden", Description: "Items for the home and garden"},
	}
}

func Products() []models.Product {
	p := func(id, name, desc string, price float64, cat string, stock int, images, features []string, created string) models.Product {
		t := at(created)
		return models.Product{
			ID: id, Name: name, Description: desc, Price: price, CategoryID: cat, Stock: stock,
			Images: images, Features: features, CreatedAt: t, UpdatedAt: t,
		}
	}
	return []models.Product{
		p("1", "Smartphone Pro Max", "The latest smartphone with every advanced feature", 999.99, "1", 50,
			[]string{"smartphone1.jpg", "smartphone2.jpg"}, []string{"128GB storage", "48MP camera", "5G", "OLED display"}, "2024-01-10T09:00:00Z"),
		p("2", "Laptop Gaming Elite", "High performance gaming laptop", 1499.99, "1", 25,
			[]string{"laptop1.jpg", "laptop2.jpg"}, []string{"Intel i7", "16GB RAM", "RTX 4060", "1TB SSD"}, "2024-01-12T11:30:00Z"),
		p("3", "Premium T-shirt", "High quality organic cotton t-shirt", 29.99, "2", 100,
			[]string{"tshirt1.jpg"}, []string{"100% organic cotton", "Modern fit", "Machine washable"}, "2024-01-20T16:45:00Z"),
		p("4", "JavaScript Programming Guide", "Complete handbook for modern JavaScript", 45.99, "3", 75,
			[]string{"book1.jpg"}, []string{"500 pages", "Practical examples", "ES6+", "Projects included"}, "2024-01-25T13:15:00Z"),
		p("5", "Automatic Coffee Maker", "Programmable coffee maker with built-in grinder", 199.99, "4", 30,
			[]string{"coffee1.jpg", "coffee2.jpg"}, []string{"Built-in grinder", "Programmable", "12 cups", "LCD screen"}, "2024-02-01T08:20:00Z"),
	}
}

func Orders() []models.Order {
	return []models.Order{
		{
			ID: "1", UserID: "2",
			Items: []models.OrderItem{
				{ProductID: "1", Quantity: 1, Price: 999.99},
				{ProductID: "3", Quantity: 2, Price: 29.99},
			},
			TotalAmount:     1059.97,
			Status:          models.OrderPending,
			ShippingAddress: models.Address{Street: "456 Client Street", City: "Lyon", ZipCode: "69000", Country: "France"},
			CreatedAt:       at("2024-03-01T10:00:00Z"),
			UpdatedAt:       at("2024-03-01T10:00:00Z"),
		},
		{
			ID: "2", UserID: "3",
			Items: []models.OrderItem{
				{ProductID: "4", Quantity: 1, Price: 45.99},
				{ProductID: "5", Quantity: 1, Price: 199.99},
			},
			TotalAmount:     245.98,
			Status:          models.OrderShipped,
			ShippingAddress: models.Address{Street: "789 User Avenue", City: "Marseille", ZipCode: "13000", Country: "France"},
			TrackingNumber:  "FR123456789",
			CreatedAt:       at("2024-02-28T15:30:00Z"),
			UpdatedAt:       at("2024-03-02T09:15:00Z"),
		},
	}
}

func PostCategories() []models.PostCategory {
	return []models.PostCategory{
		{Name: "tech", DisplayName: "Technology", Description: "Articles about technology and programming"},
		{Name: "lifestyle", DisplayName: "Lifestyle", Description: "Everyday life, wellbeing and travel"},
		{Name: "education", DisplayName: "Education", Description: "Learning resources and guides"},
	}
}

func Posts() []models.Post {
	p := func(id, title, content, cat, author, published string, tags ...string) models.Post {
		return models.Post{ID: id, Title: title, Content: content, Category: cat, Author: author, Tags: tags, PublishedAt: at(published)}
	}
	return []models.Post{
		p("1", "Introduction to Express.js", "Express is a minimal web framework.", "tech", "Alice Dupont", "2024-01-15T10:00:00Z", "express", "nodejs", "web"),
		p("2", "JavaScript best practices", "Write readable and maintainable code.", "tech", "Bob Martin", "2024-01-22T14:30:00Z", "javascript", "best-practices", "coding"),
		p("3", "Building a REST API", "Resources, verbs and status codes.", "tech", "Charlie Wilson", "2024-02-10T09:15:00Z", "api", "rest", "web-services"),
		p("4", "A beginner developer guide", "Where to start when learning to code.", "education", "Diana Smith", "2024-02-28T16:45:00Z", "beginner", "guide", "development"),
		p("5", "Tech trends of 2024", "What changed this year.", "tech", "Eve Johnson", "2024-03-05T11:20:00Z", "trends", "2024", "technology"),
		p("6", "Work and life balance", "Keeping healthy boundaries.", "lifestyle", "Frank Brown", "2024-03-12T13:00:00Z", "work-life-balance", "wellness", "productivity"),
		p("7", "Healthy cooking in 30 minutes", "Quick recipes for busy days.", "lifestyle", "Grace Lee", "2024-04-18T12:30:00Z", "cooking", "healthy", "quick-recipes"),
		p("8", "Artificial intelligence and ethics", "Questions every engineer should ask.", "tech", "Henry Davis", "2024-05-22T15:45:00Z", "ai", "ethics", "technology"),
		p("9", "Travel and discoveries", "Destinations worth the trip.", "lifestyle", "Iris Taylor", "2024-06-01T08:00:00Z", "travel", "destinations", "adventure"),
		p("10", "Web development security", "Common vulnerabilities and fixes.", "tech", "Jack Miller", "2023-12-15T17:30:00Z", "security", "web", "vulnerabilities"),
	}
}

type Stores struct {
	Users      repo.Repository[models.User]
	Categories repo.Repository[models.Category]
	Products   repo.Repository[models.Product]
	Orders     repo.Repository[models.Order]
	Posts      repo.Repository[models.Post]
}

// Load inserts the demo data into empty stores. Stores that already hold
// records are left alone so restarts against a database are idempotent.
func Load(ctx context.Context, s Stores) error {
	users, err := Users()
	if err != nil {
		return err
	}
	if err := fill(ctx, s.Users, users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := fill(ctx, s.Categories, Categories()); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := fill(ctx, s.Products, Products()); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := fill(ctx, s.Orders, Orders()); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	if err := fill(ctx, s.Posts, Posts()); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	return nil
}

func fill[T repo.Entity](ctx context.Context, r repo.Repository[T], items []T) error {
	existing, err := r.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, it := range items {
		if _, err := r.Insert(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
