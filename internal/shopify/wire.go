package shopify

// Wire-level shapes for the Storefront API's connection-style responses.
// They are decoded privately and flattened into the public types.

type moneyWire struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

func (m moneyWire) money() Money {
	return Money{Amount: m.Amount, CurrencyCode: m.CurrencyCode}
}

type imageWire struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
}

func (i imageWire) image() Image {
	alt := ""
	if i.AltText != nil {
		alt = *i.AltText
	}
	return Image{URL: i.URL, AltText: alt, Width: i.Width, Height: i.Height}
}

type imageConnection struct {
	Edges []struct {
		Node imageWire `json:"node"`
	} `json:"edges"`
}

type variantWire struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	AvailableForSale bool       `json:"availableForSale"`
	Price            moneyWire  `json:"price"`
	CompareAtPrice   *moneyWire `json:"compareAtPrice"`
}

type productWire struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Handle           string `json:"handle"`
	Description      string `json:"description"`
	DescriptionHTML  string `json:"descriptionHtml"`
	AvailableForSale bool   `json:"availableForSale"`
	PriceRange       struct {
		MinVariantPrice moneyWire `json:"minVariantPrice"`
		MaxVariantPrice moneyWire `json:"maxVariantPrice"`
	} `json:"priceRange"`
	CompareAtPriceRange struct {
		MinVariantPrice *moneyWire `json:"minVariantPrice"`
	} `json:"compareAtPriceRange"`
	Images   imageConnection `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantWire `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	SEO struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	} `json:"seo"`
}

func (p *productWire) product() *Product {
	if p == nil {
		return nil
	}
	out := &Product{
		ID:               p.ID,
		Title:            p.Title,
		Handle:           p.Handle,
		Description:      p.Description,
		DescriptionHTML:  p.DescriptionHTML,
		AvailableForSale: p.AvailableForSale,
		MinPrice:         p.PriceRange.MinVariantPrice.money(),
		MaxPrice:         p.PriceRange.MaxVariantPrice.money(),
	}
	if cmp := p.CompareAtPriceRange.MinVariantPrice; cmp != nil && cmp.Amount != "" {
		m := cmp.money()
		out.CompareAtPrice = &m
	}
	for _, edge := range p.Images.Edges {
		out.Images = append(out.Images, edge.Node.image())
	}
	for _, edge := range p.Variants.Edges {
		v := Variant{
			ID:               edge.Node.ID,
			Title:            edge.Node.Title,
			AvailableForSale: edge.Node.AvailableForSale,
			Price:            edge.Node.Price.money(),
		}
		if edge.Node.CompareAtPrice != nil {
			m := edge.Node.CompareAtPrice.money()
			v.CompareAtPrice = &m
		}
		out.Variants = append(out.Variants, v)
	}
	if p.SEO.Title != nil {
		out.SEO.Title = *p.SEO.Title
	}
	if p.SEO.Description != nil {
		out.SEO.Description = *p.SEO.Description
	}
	return out
}

type cartWire struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		TotalAmount    moneyWire `json:"totalAmount"`
		SubtotalAmount moneyWire `json:"subtotalAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []struct {
			Node lineWire `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

type lineWire struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Cost     struct {
		TotalAmount moneyWire `json:"totalAmount"`
	} `json:"cost"`
	Merchandise struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Product struct {
			Title  string          `json:"title"`
			Handle string          `json:"handle"`
			Images imageConnection `json:"images"`
		} `json:"product"`
		Price moneyWire `json:"price"`
	} `json:"merchandise"`
}

func (c *cartWire) cart() *Cart {
	if c == nil {
		return nil
	}
	out := &Cart{
		ID:            c.ID,
		CheckoutURL:   c.CheckoutURL,
		TotalQuantity: c.TotalQuantity,
		Cost: CartCost{
			SubtotalAmount: c.Cost.SubtotalAmount.money(),
			TotalAmount:    c.Cost.TotalAmount.money(),
		},
	}
	for _, edge := range c.Lines.Edges {
		node := edge.Node
		line := Line{
			ID:       node.ID,
			Quantity: node.Quantity,
			Cost:     node.Cost.TotalAmount.money(),
			Merchandise: Merchandise{
				VariantID:     node.Merchandise.ID,
				VariantTitle:  node.Merchandise.Title,
				ProductTitle:  node.Merchandise.Product.Title,
				ProductHandle: node.Merchandise.Product.Handle,
				Price:         node.Merchandise.Price.money(),
			},
		}
		if len(node.Merchandise.Product.Images.Edges) > 0 {
			img := node.Merchandise.Product.Images.Edges[0].Node.image()
			line.Merchandise.Image = &img
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}

type userErrorWire struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func firstUserError(errs []userErrorWire) error {
	if len(errs) == 0 {
		return nil
	}
	return &UserError{Field: errs[0].Field, Message: errs[0].Message}
}
