package payment

// ExtractInvoiceID pulls the upstream invoice identifier out of either
// callback shape: invoice_id from a manual verification call, order_id from
// the gateway webhook.
func ExtractInvoiceID(body map[string]interface{}) (string, error) {
	if id := stringField(body, "invoice_id"); id != "" {
		return id, nil
	}
	if id := stringField(body, "order_id"); id != "" {
		return id, nil
	}
	return "", ErrMissingIdentifier
}

func stringField(body map[string]interface{}, key string) string {
	v, ok := body[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
