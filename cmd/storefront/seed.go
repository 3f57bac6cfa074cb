package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	catalogmodel "storefront/pkg/catalog/domain/model"
	catalogservice "storefront/pkg/catalog/domain/service"
	"storefront/pkg/common/domain"
	"storefront/pkg/infrastructure/auth"
	"storefront/pkg/infrastructure/event"
	"storefront/pkg/infrastructure/mysql"
	userservice "storefront/pkg/user/domain/service"
)

func runSeed(c *cli.Context) error {
	cfg, err := parseEnv()
	if err != nil {
		return err
	}
	db, err := openDatabase(c.Context, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	dispatcher := event.LogDispatcher{}
	products := catalogservice.NewProductService(mysql.NewProductRepository(db), dispatcher)
	if err := seedCatalog(c.Context, products); err != nil {
		return err
	}

	if cfg.AdminEmail == "" {
		log.Info("STOREFRONT_ADMIN_EMAIL not set, skipping admin account")
		return nil
	}
	users := userservice.NewUserService(
		mysql.NewUserRepository(db),
		auth.NewPasswordManager(cfg.BcryptCost),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		dispatcher,
	)
	admin, err := users.EnsureAdmin(c.Context, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return errors.Wrap(err, "ensure admin")
	}
	log.WithField("email", admin.Email).Info("admin account ready")
	return nil
}

// seedCatalog replaces every product with the sample set.
func seedCatalog(ctx context.Context, products catalogservice.ProductService) error {
	// The seed runs before any account exists.
	operator := domain.Principal{IsAdmin: true}
	existing, err := products.ListProducts(ctx, catalogmodel.ProductFilter{})
	if err != nil {
		return err
	}
	for _, p := range existing {
		if err := products.DeleteProduct(ctx, operator, p.ID); err != nil {
			return errors.Wrapf(err, "delete product %s", p.ID)
		}
	}
	log.WithField("count", len(existing)).Info("cleared existing products")

	for _, in := range sampleProducts() {
		if _, err := products.CreateProduct(ctx, operator, in); err != nil {
			return errors.Wrapf(err, "create product %q", in.Name)
		}
	}
	log.WithField("count", len(sampleProducts())).Info("products seeded")
	return nil
}

func sampleProduct(category catalogmodel.Category, name, description string, price, discount int64, image string, stock int, sizes, colors []string) catalogservice.CreateProductInput {
	return catalogservice.CreateProductInput{
		Name:        name,
		Description: description,
		Price:       decimal.NewFromInt(price),
		Discount:    decimal.NewFromInt(discount),
		Category:    category,
		Image:       image,
		Stock:       stock,
		Sizes:       sizes,
		Colors:      colors,
	}
}

func sampleProducts() []catalogservice.CreateProductInput {
	const img = "https://images.unsplash.com/"
	adult := []string{"S", "M", "L", "XL"}
	kids := []string{"3-4Y", "5-6Y", "7-8Y", "9-10Y"}
	oneSize := []string{"One Size"}

	return []catalogservice.CreateProductInput{
		sampleProduct(catalogmodel.Women, "Classic White Cotton Blouse",
			"Elegant white cotton blouse with a relaxed fit. Perfect for both casual and formal occasions. Features a subtle button-down front and classic collar.",
			1499, 20, img+"photo-1598554747436-c9293d6a588f?w=600", 25, []string{"XS", "S", "M", "L", "XL"}, []string{"White", "Cream", "Light Blue"}),
		sampleProduct(catalogmodel.Women, "High-Waisted Tailored Trousers",
			"Sophisticated high-waisted trousers with a tailored fit. Made from premium stretch fabric for all-day comfort.",
			2299, 0, img+"photo-1594938298603-c8148c4dae35?w=600", 20, []string{"XS", "S", "M", "L"}, []string{"Black", "Navy", "Beige"}),
		sampleProduct(catalogmodel.Women, "Floral Print Maxi Dress",
			"Beautiful flowing maxi dress with a romantic floral print. Features adjustable spaghetti straps and a flattering A-line silhouette.",
			2799, 15, img+"photo-1572804013309-59a88b7e92f1?w=600", 15, adult, []string{"Floral Blue", "Floral Pink"}),
		sampleProduct(catalogmodel.Women, "Cozy Knit Cardigan",
			"Soft and warm knit cardigan perfect for layering. Features front button closure and ribbed trim details.",
			1899, 10, img+"photo-1434389677669-e08b4cac3105?w=600", 30, adult, []string{"Beige", "Gray", "Brown"}),
		sampleProduct(catalogmodel.Women, "Denim A-Line Skirt",
			"Classic denim skirt with a timeless A-line cut. Versatile piece that pairs well with any top.",
			1299, 0, img+"photo-1583496661160-fb5886a0afe1?w=600", 22, []string{"XS", "S", "M", "L"}, []string{"Light Wash", "Dark Wash"}),

		sampleProduct(catalogmodel.Men, "Premium Slim Fit Oxford Shirt",
			"Classic Oxford shirt crafted from 100% cotton. Features a button-down collar and slim fit design for a modern look.",
			1699, 0, img+"photo-1602810318383-e386cc2a3ccf?w=600", 35, []string{"S", "M", "L", "XL", "XXL"}, []string{"White", "Light Blue", "Pink"}),
		sampleProduct(catalogmodel.Men, "Relaxed Fit Chino Pants",
			"Comfortable chino pants with a relaxed fit. Made from soft cotton twill with a hint of stretch.",
			1999, 25, img+"photo-1473966968600-fa801b869a1a?w=600", 28, adult, []string{"Khaki", "Navy", "Olive"}),
		sampleProduct(catalogmodel.Men, "Crew Neck Wool Sweater",
			"Luxurious wool blend sweater with a classic crew neck. Perfect for cooler weather and office wear.",
			2499, 0, img+"photo-1576566588028-4147f3842f27?w=600", 20, adult, []string{"Charcoal", "Navy", "Burgundy"}),
		sampleProduct(catalogmodel.Men, "Classic Denim Jacket",
			"Timeless denim jacket with a modern fit. Features traditional button front and chest pockets.",
			2999, 10, img+"photo-1601333144130-8cbb312386b6?w=600", 18, adult, []string{"Medium Wash", "Dark Wash"}),
		sampleProduct(catalogmodel.Men, "Essential Cotton T-Shirt",
			"Soft organic cotton t-shirt with a comfortable regular fit. A wardrobe essential in versatile colors.",
			799, 0, img+"photo-1521572163474-6864f9cf17ab?w=600", 50, []string{"S", "M", "L", "XL", "XXL"}, []string{"Black", "White", "Gray", "Navy"}),

		sampleProduct(catalogmodel.Kids, "Colorful Printed T-Shirt",
			"Fun and playful printed t-shirt for kids. Made from soft, breathable cotton that's gentle on skin.",
			599, 15, img+"photo-1519238263530-99bdd11df2ea?w=600", 40, kids, []string{"Blue", "Red", "Yellow"}),
		sampleProduct(catalogmodel.Kids, "Comfortable Jogger Pants",
			"Stretchy jogger pants perfect for active kids. Features elastic waistband and cuffed ankles.",
			899, 0, img+"photo-1503919545889-aef636e10ad4?w=600", 35, kids, []string{"Gray", "Navy", "Black"}),
		sampleProduct(catalogmodel.Kids, "Cute Floral Dress",
			"Adorable floral dress for girls. Features a twirl-worthy skirt and comfortable cotton fabric.",
			1199, 20, img+"photo-1518831959646-742c3a14ebf7?w=600", 25, kids, []string{"Pink Floral", "Blue Floral"}),
		sampleProduct(catalogmodel.Kids, "Cozy Hoodie Sweatshirt",
			"Warm and cozy hoodie for kids. Features kangaroo pocket and soft fleece lining.",
			999, 0, img+"photo-1445796886651-d31a2c15f3ce?w=600", 30, append(kids, "11-12Y"), []string{"Red", "Blue", "Green", "Purple"}),

		sampleProduct(catalogmodel.Accessories, "Leather Crossbody Bag",
			"Elegant leather crossbody bag with adjustable strap. Features multiple compartments for organization.",
			2499, 0, img+"photo-1548036328-c9fa89d128fa?w=600", 20, oneSize, []string{"Black", "Brown", "Tan"}),
		sampleProduct(catalogmodel.Accessories, "Classic Wool Scarf",
			"Soft wool blend scarf in timeless patterns. Perfect for adding warmth and style to any outfit.",
			899, 10, img+"photo-1520903920243-00d872a2d1c9?w=600", 40, oneSize, []string{"Gray", "Burgundy", "Navy", "Camel"}),
		sampleProduct(catalogmodel.Accessories, "Aviator Sunglasses",
			"Classic aviator sunglasses with UV protection. Lightweight metal frame with comfortable nose pads.",
			1299, 15, img+"photo-1511499767150-a48a237f0083?w=600", 45, oneSize, []string{"Gold/Brown", "Silver/Gray", "Black/Black"}),
		sampleProduct(catalogmodel.Accessories, "Minimalist Leather Watch",
			"Elegant minimalist watch with genuine leather strap. Features clean dial design and reliable quartz movement.",
			3499, 0, img+"photo-1524805444758-089113d48a6d?w=600", 15, oneSize, []string{"Black/Silver", "Brown/Gold", "Navy/Silver"}),
		sampleProduct(catalogmodel.Accessories, "Canvas Tote Bag",
			"Spacious canvas tote bag perfect for everyday use. Features reinforced handles and inner pocket.",
			799, 0, img+"photo-1544816155-12df9643f363?w=600", 50, oneSize, []string{"Natural", "Black", "Navy"}),
		sampleProduct(catalogmodel.Accessories, "Silk Hair Scrunchies Set",
			"Set of 3 luxurious silk scrunchies. Gentle on hair and adds a stylish touch to any hairstyle.",
			499, 0, img+"photo-1598560917505-59a3ad559071?w=600", 60, oneSize, []string{"Black/Pink/White", "Neutral Set", "Pastel Set"}),
	}
}
