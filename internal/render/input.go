package render

import (
	"regexp"
	"strconv"
	"strings"
)

var lineItemField = regexp.MustCompile(`^regel(\d+)_(.+)$`)

// BuildInputData maps structured document data onto the flat field-name
// dictionary the pdfme template expects. Field names follow the Dutch
// template conventions (bedrijfsnaam, klant_naam, regel{N}_{kolom}, ...).
// Fields the template does not declare are left untouched.
func BuildInputData(req Request) map[string]string {
	input := make(map[string]string)

	pageSchema := firstPageSchema(req.TemplateJSON)
	if pageSchema == nil {
		return input
	}

	companyAddress := joinAddress(req.Settings.Address, req.Settings.PostalCode, req.Settings.City)

	customerAddress := ""
	customerName := ""
	if req.Customer != nil {
		customerName = req.Customer.Name
		customerAddress = joinAddress(req.Customer.Address, req.Customer.PostalCode, req.Customer.City)
	}

	footer := req.Settings.FooterText
	if footer == "" {
		parts := make([]string, 0, 4)
		if req.Settings.CompanyName != "" {
			parts = append(parts, req.Settings.CompanyName)
		}
		if req.Settings.KvkNumber != "" {
			parts = append(parts, "KvK: "+req.Settings.KvkNumber)
		}
		if req.Settings.BtwNumber != "" {
			parts = append(parts, "BTW: "+req.Settings.BtwNumber)
		}
		if req.Settings.IBAN != "" {
			parts = append(parts, "IBAN: "+req.Settings.IBAN)
		}
		footer = strings.Join(parts, " | ")
	}

	title := "FACTUUR"
	if req.Document.Type == "quote" {
		title = "OFFERTE"
	}

	for fieldName, rawDef := range pageSchema {
		def, _ := rawDef.(map[string]any)
		fieldType, _ := def["type"].(string)
		nameLower := strings.ToLower(fieldName)

		// Shapes and static imagery keep their template content.
		switch fieldType {
		case "line", "rectangle", "ellipse", "svg":
			continue
		case "image":
			if !strings.Contains(nameLower, "logo") {
				continue
			}
		}

		switch nameLower {
		case "bedrijfsnaam":
			input[fieldName] = req.Settings.CompanyName
		case "bedrijfsadres":
			input[fieldName] = companyAddress
		case "footer":
			input[fieldName] = footer
		case "klant_naam":
			input[fieldName] = customerName
		case "klant_adres":
			input[fieldName] = customerAddress
		case "factuurnummer", "offerte_nummer", "documentnummer":
			input[fieldName] = req.Document.Number
		case "datum":
			input[fieldName] = req.Document.Date
		case "vervaldatum":
			input[fieldName] = req.Document.DueDate
		case "factuur_titel", "offerte_titel", "document_titel", "titel":
			input[fieldName] = title
		case "subtotaal":
			input[fieldName] = req.Document.Subtotal
		case "btw":
			input[fieldName] = req.Document.BtwAmount
		case "totaal":
			input[fieldName] = req.Document.Total
		case "betaalinfo", "betaalgegevens":
			parts := make([]string, 0, 2)
			if req.Settings.IBAN != "" {
				parts = append(parts, "IBAN: "+req.Settings.IBAN)
			}
			if req.Document.Number != "" {
				parts = append(parts, "Ref: "+req.Document.Number)
			}
			input[fieldName] = strings.Join(parts, "\n")
		default:
			if match := lineItemField.FindStringSubmatch(nameLower); match != nil {
				input[fieldName] = lineItemValue(req.Document.LineItems, match)
			}
		}
	}

	return input
}

func lineItemValue(items []LineItemView, match []string) string {
	idx, err := strconv.Atoi(match[1])
	if err != nil || idx < 1 || idx > len(items) {
		return ""
	}
	item := items[idx-1]

	switch match[2] {
	case "omschrijving":
		return item.Description
	case "aantal":
		return item.Quantity
	case "prijs":
		return item.UnitPrice
	case "totaal":
		return item.LineTotal
	case "btw":
		return item.BtwPercentage + "%"
	}
	return ""
}

func firstPageSchema(templateJSON map[string]any) map[string]any {
	schemas, _ := templateJSON["schemas"].([]any)
	if len(schemas) == 0 {
		return nil
	}
	page, _ := schemas[0].(map[string]any)
	return page
}

func joinAddress(street, postalCode, city string) string {
	parts := make([]string, 0, 2)
	if street != "" {
		parts = append(parts, street)
	}
	cityLine := strings.TrimSpace(postalCode + " " + city)
	if cityLine != "" {
		parts = append(parts, cityLine)
	}
	return strings.Join(parts, "\n")
}

// FormatCurrency renders an amount string in Dutch notation (1.234,56).
// The input is a plain decimal string with a dot separator.
func FormatCurrency(amount string) string {
	negative := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")

	whole, frac, found := strings.Cut(amount, ".")
	if !found {
		frac = "00"
	}
	for len(frac) < 2 {
		frac += "0"
	}
	frac = frac[:2]

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	result := grouped.String() + "," + frac
	if negative {
		result = "-" + result
	}
	return result
}
