// Command importorders migrates legacy webshop orders from a CSV export
// into Shopify through the Admin REST API. One-off migration tooling.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	apiVersion   = "2024-01"
	variantID    = 57354473570688
	productPrice = 28.95
	importTag    = "jouwweb-import"
)

// countryCodes maps the Dutch country names of the legacy export to ISO
// codes.
var countryCodes = map[string]string{
	"Nederland":           "NL",
	"België":              "BE",
	"Duitsland":           "DE",
	"Frankrijk":           "FR",
	"Spanje":              "ES",
	"Portugal":            "PT",
	"Italië":              "IT",
	"Verenigd Koninkrijk": "GB",
	"Oostenrijk":          "AT",
	"Polen":               "PL",
	"Tsjechië":            "CZ",
	"Hongarije":           "HU",
	"Kroatië":             "HR",
	"Roemenië":            "RO",
	"Bulgarije":           "BG",
	"Finland":             "FI",
	"Zweden":              "SE",
	"Denemarken":          "DK",
	"Noorwegen":           "NO",
	"Zwitserland":         "CH",
	"Ierland":             "IE",
	"Griekenland":         "GR",
	"Luxemburg":           "LU",
}

type orderStatus struct {
	financial   string
	fulfillment string
}

var statuses = map[string]orderStatus{
	"Betaald":              {financial: "paid"},
	"Verzonden":            {financial: "paid", fulfillment: "fulfilled"},
	"Afgehaald":            {financial: "paid", fulfillment: "fulfilled"},
	"Klaar om af te halen": {financial: "paid"},
	"In behandeling":       {financial: "pending"},
	"Geannuleerd":          {financial: "refunded"},
}

type legacyOrder map[string]string

func main() {
	csvPath := flag.String("csv", "", "path to the legacy orders CSV export")
	dryRun := flag.Bool("dry-run", false, "parse and report without creating orders")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if *csvPath == "" {
		log.Fatal("-csv is required")
	}

	domain := os.Getenv("SHOPIFY_STORE_DOMAIN")
	if domain == "" {
		log.Fatal("SHOPIFY_STORE_DOMAIN is not set")
	}
	token := os.Getenv("SHOPIFY_ADMIN_ACCESS_TOKEN")
	if token == "" && !*dryRun {
		log.Fatal("SHOPIFY_ADMIN_ACCESS_TOKEN is not set")
	}

	orders, err := readOrders(*csvPath)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	log.Printf("Found %d orders", len(orders))

	// The export lists newest first; create oldest first so Shopify's
	// order sequence roughly matches history.
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}

	imp := importer{
		domain: domain,
		token:  token,
		dryRun: *dryRun,
		client: &http.Client{Timeout: 30 * time.Second},
	}

	var success, failed, skipped int
	for i, order := range orders {
		if i > 0 {
			time.Sleep(500 * time.Millisecond)
		}
		switch err := imp.createOrder(order); {
		case errors.Is(err, errCancelled):
			skipped++
		case err != nil:
			log.Printf("order #%s failed: %v", order["Ordernummer"], err)
			failed++
		default:
			success++
		}
		if (i+1)%10 == 0 {
			log.Printf("progress: %d/%d", i+1, len(orders))
		}
	}

	log.Printf("Import finished: %d created, %d failed, %d skipped (cancelled)", success, failed, skipped)
}

func readOrders(path string) ([]legacyOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no order rows in %s", path)
	}

	headers := records[0]
	orders := make([]legacyOrder, 0, len(records)-1)
	for _, record := range records[1:] {
		order := make(legacyOrder, len(headers))
		for i, header := range headers {
			if i < len(record) {
				order[strings.TrimSpace(header)] = strings.TrimSpace(record[i])
			}
		}
		orders = append(orders, order)
	}
	return orders, nil
}

var errCancelled = errors.New("order cancelled")

type importer struct {
	domain string
	token  string
	dryRun bool
	client *http.Client
}

func (im importer) createOrder(order legacyOrder) error {
	number := order["Ordernummer"]
	if order["Status"] == "Geannuleerd" {
		log.Printf("skipping cancelled order #%s", number)
		return errCancelled
	}
	status, ok := statuses[order["Status"]]
	if !ok {
		status = orderStatus{financial: "pending"}
	}

	total := order["Totaal ex BTW"]
	if total == "" {
		total = order["Totaal"]
	}
	quantity := quantityFromTotal(total, order["Verzendkosten"])
	shippingCost := parseAmount(order["Verzendkosten"])

	payload := map[string]any{
		"order": map[string]any{
			"name":                     "#JW-" + number,
			"email":                    order["E-mail"],
			"phone":                    nullable(order["Telefoon"]),
			"created_at":               parseDutchDate(order["Geplaatst"]),
			"financial_status":         status.financial,
			"fulfillment_status":       nullable(status.fulfillment),
			"send_receipt":             false,
			"send_fulfillment_receipt": false,
			"tags":                     importTag,
			"note":                     fmt.Sprintf("Geïmporteerd van JouwWeb. Origineel ordernummer: %s. Betaalwijze: %s", number, order["Betaalwijze"]),
			"line_items": []map[string]any{{
				"variant_id": variantID,
				"quantity":   quantity,
				"price":      fmt.Sprintf("%.2f", productPrice),
			}},
			"shipping_lines":   shippingLines(shippingCost),
			"billing_address":  address(order["Naam"], order["Bedrijf"], order["Fact. straat"], order["Fact. huisnummer"], order["Fact. plaats"], order["Fact. postcode"], order["Fact. land"], order["Telefoon"]),
			"shipping_address": shippingAddress(order),
			"customer": map[string]any{
				"email":      order["E-mail"],
				"first_name": firstName(order["Naam"]),
				"last_name":  lastName(order["Naam"]),
				"phone":      nullable(order["Telefoon"]),
			},
		},
	}

	if im.dryRun {
		log.Printf("dry-run: order #JW-%s (%dx Norvia Gel Glove)", number, quantity)
		return nil
	}

	var result struct {
		Order *struct {
			ID int64 `json:"id"`
		} `json:"order"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := im.post("/orders.json", payload, &result); err != nil {
		return err
	}
	if result.Order == nil {
		return fmt.Errorf("admin api rejected order: %s", string(result.Errors))
	}
	log.Printf("order #JW-%s created (Shopify ID: %d, %dx Norvia Gel Glove)", number, result.Order.ID, quantity)
	return nil
}

func (im importer) post(endpoint string, payload any, dst any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("https://%s/admin/api/%s%s", im.domain, apiVersion, endpoint)

	for {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("X-Shopify-Access-Token", im.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := im.client.Do(req)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			log.Println("rate limited, waiting 2 seconds")
			time.Sleep(2 * time.Second)
			continue
		}
		return json.Unmarshal(data, dst)
	}
}

func shippingLines(cost float64) []map[string]any {
	if cost <= 0 {
		return []map[string]any{}
	}
	return []map[string]any{{
		"title": "Verzending",
		"price": fmt.Sprintf("%.2f", cost),
		"code":  "SHIPPING",
	}}
}

func shippingAddress(order legacyOrder) map[string]any {
	name := order["Aflever naam"]
	if name == "" {
		name = order["Naam"]
	}
	return address(name, order["Aflever bedrijf"], order["Aflever straat"], order["Aflever huisnummer"], order["Aflever plaats"], order["Aflever postcode"], order["Aflever land"], order["Telefoon"])
}

func address(name, company, street, houseNumber, city, zip, country, phone string) map[string]any {
	return map[string]any{
		"first_name":   firstName(name),
		"last_name":    lastName(name),
		"company":      nullable(company),
		"address1":     strings.TrimSpace(street + " " + houseNumber),
		"city":         city,
		"zip":          zip,
		"country_code": countryCode(country),
		"phone":        nullable(phone),
	}
}

func firstName(name string) string {
	first, _, _ := strings.Cut(name, " ")
	return first
}

func lastName(name string) string {
	_, rest, ok := strings.Cut(name, " ")
	if !ok || rest == "" {
		return name
	}
	return rest
}

func countryCode(country string) string {
	if code, ok := countryCodes[country]; ok {
		return code
	}
	return "NL"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// parseDutchDate converts the d-m-yyyy dates of the export to RFC 3339.
// Unparseable dates fall back to now.
func parseDutchDate(s string) string {
	t, err := time.Parse("2-1-2006", strings.TrimSpace(s))
	if err != nil {
		return time.Now().Format(time.RFC3339)
	}
	return t.Format(time.RFC3339)
}

// parseAmount reads a Dutch decimal (comma separator) into a float.
func parseAmount(s string) float64 {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if normalized == "" {
		return 0
	}
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0
	}
	return v
}

// quantityFromTotal infers the ordered quantity from the order total minus
// shipping. The shop sold a single product at a fixed price.
func quantityFromTotal(total, shipping string) int {
	productTotal := parseAmount(total) - parseAmount(shipping)
	quantity := int(math.Round(productTotal / productPrice))
	if quantity < 1 {
		return 1
	}
	return quantity
}
