package models

// RawPurchaseRecord mirrors one entry of a Google Play "Purchase History.json"
// export. Only the fields the normalizer reads are declared; the rest of the
// entry is ignored by the decoder.
type RawPurchaseRecord struct {
	PurchaseHistory struct {
		InvoicePrice       string `json:"invoicePrice"`
		PaymentMethodTitle string `json:"paymentMethodTitle"`
		UserLanguageCode   string `json:"userLanguageCode"`
		UserCountry        string `json:"userCountry"`
		Doc                struct {
			DocumentType string `json:"documentType"`
			Title        string `json:"title"`
		} `json:"doc"`
		PurchaseTime string `json:"purchaseTime"`
	} `json:"purchaseHistory"`
}

// Purchase is a purchase record after price and title normalization.
// Amount is zero for free/refunded/unparsable entries, and a zero amount
// always carries an empty currency label.
type Purchase struct {
	ID           int64   `json:"id,omitempty"`
	Title        string  `json:"title"`
	AppName      string  `json:"appName"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Date         string  `json:"date"` // day precision, DD-MM-YYYY
	DocumentType string  `json:"documentType"`
}

// Bucket is one aggregated slice of a breakdown or timeline series.
type Bucket struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
}
