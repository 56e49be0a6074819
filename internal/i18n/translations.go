package i18n

var invoiceEN = map[string]string{
	"invoice":            "INVOICE",
	"date":               "Date",
	"from":               "FROM",
	"to":                 "TO",
	"contact":            "Contact",
	"tax_id":             "Tax ID",
	"service":            "Service",
	"start":              "Start",
	"end":                "End",
	"hours":              "Hours",
	"amount":             "Amount",
	"total_hours":        "Total Hours",
	"total_amount":       "Total Amount",
	"payment_details":    "Payment Details",
	"no_payment_details": "Please contact for payment details.",
}

var invoiceDE = map[string]string{
	"invoice":            "RECHNUNG",
	"date":               "Datum",
	"from":               "VON",
	"to":                 "AN",
	"contact":            "Ansprechpartner",
	"tax_id":             "Steuernummer",
	"service":            "Leistung",
	"start":              "Beginn",
	"end":                "Ende",
	"hours":              "Stunden",
	"amount":             "Betrag",
	"total_hours":        "Gesamtstunden",
	"total_amount":       "Gesamtbetrag",
	"payment_details":    "Zahlungsinformationen",
	"no_payment_details": "Bitte kontaktieren Sie uns für Zahlungsdetails.",
}

var tables = map[Language]map[string]map[string]string{
	English: {"invoice": invoiceEN},
	German:  {"invoice": invoiceDE},
}
