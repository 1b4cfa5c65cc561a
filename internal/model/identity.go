package model

// ProductIdentity is the product identification extracted from page 1 of a
// proposal document. It is never derived from file or folder names.
type ProductIdentity struct {
	ProductNameRaw        string `json:"product_name_raw"`
	ProductNameNormalized string `json:"product_name_normalized"`
	ProductKey            string `json:"product_key"`
}

// VariantContext is the demographic variant (age band, sex) the proposal
// was generated for, extracted from the block following the product name.
type VariantContext struct {
	VariantKey    string            `json:"variant_key"`
	VariantAxis   []string          `json:"variant_axis,omitempty"`
	VariantValues map[string]string `json:"variant_values,omitempty"`
}

// DefaultVariant is the variant assigned when neither an age band nor a sex
// marker is found on page 1.
func DefaultVariant() VariantContext {
	return VariantContext{VariantKey: "default"}
}
