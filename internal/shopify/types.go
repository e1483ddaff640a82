package shopify

// Money is a platform-computed amount. The amount stays a decimal string:
// the client never does arithmetic on it.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Image is a single product or line image.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	AvailableForSale bool   `json:"availableForSale"`
	Price            Money  `json:"price"`
	CompareAtPrice   *Money `json:"compareAtPrice,omitempty"`
}

// SEO carries the storefront SEO metadata of a product.
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Product is the full catalog projection for one product.
type Product struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Handle           string    `json:"handle"`
	Description      string    `json:"description"`
	DescriptionHTML  string    `json:"descriptionHtml"`
	AvailableForSale bool      `json:"availableForSale"`
	MinPrice         Money     `json:"minPrice"`
	MaxPrice         Money     `json:"maxPrice"`
	CompareAtPrice   *Money    `json:"compareAtPrice,omitempty"`
	Images           []Image   `json:"images"`
	Variants         []Variant `json:"variants"`
	SEO              SEO       `json:"seo"`
}

// Merchandise references the variant a cart line points at, together with
// the owning product's display data.
type Merchandise struct {
	VariantID     string `json:"variantId"`
	VariantTitle  string `json:"variantTitle"`
	ProductTitle  string `json:"productTitle"`
	ProductHandle string `json:"productHandle"`
	Image         *Image `json:"image,omitempty"`
	Price         Money  `json:"price"`
}

// Line is one quantity-bearing entry within a cart.
type Line struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Cost        Money       `json:"cost"`
	Merchandise Merchandise `json:"merchandise"`
}

// CartCost summarises the platform-computed totals of a cart.
type CartCost struct {
	SubtotalAmount Money `json:"subtotalAmount"`
	TotalAmount    Money `json:"totalAmount"`
}

// Cart mirrors the platform's cart object. Every field is server-computed;
// the identifier is immutable once the cart has been created.
type Cart struct {
	ID            string   `json:"id"`
	CheckoutURL   string   `json:"checkoutUrl"`
	TotalQuantity int      `json:"totalQuantity"`
	Cost          CartCost `json:"cost"`
	Lines         []Line   `json:"lines"`
}
