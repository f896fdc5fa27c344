package categorize

// Rule is one keyword-based categorization rule. Rules are evaluated in
// list order against rows that no earlier rule has claimed, so the position
// of a rule encodes its tie-break priority.
type Rule struct {
	// Name is recorded in bk_rule for every row the rule claims.
	Name string `yaml:"name"`
	// Category is the bookkeeping category the rule assigns.
	Category string `yaml:"category"`
	// Keywords match case-insensitively as substrings.
	Keywords []string `yaml:"keywords"`
	// UseAccount matches against the iban/account field instead of the
	// description.
	UseAccount bool `yaml:"use_account,omitempty"`
}

// Canonical bookkeeping categories.
const (
	CategoryIncome     = "income"
	CategoryCost       = "cost"
	CategoryPayroll    = "payroll"
	CategoryVATPayment = "vat_payment"
)

// Rule names recorded for non-keyword assignments.
const (
	RuleProvided     = "provided"
	RuleSignPositive = "sign_positive"
	RuleSignNegative = "sign_negative"
)

// DefaultRules is the built-in rule list. Payroll and tax rules run before
// the merchant rules so a description naming both a salary and a vendor
// resolves to the earlier rule.
var DefaultRules = []Rule{
	{
		Name:     "payroll_keywords",
		Category: CategoryPayroll,
		Keywords: []string{"salary", "payroll", "gehalt", "lohn", "wage"},
	},
	{
		Name:     "tax_keywords",
		Category: CategoryVATPayment,
		Keywords: []string{"tax", "vat", "ust", "mwst", "finanzamt"},
	},
	{
		Name:     "supermarkets",
		Category: CategoryCost,
		Keywords: []string{"rewe", "aldi", "lidl", "edeka", "kaufland", "carrefour", "tesco", "supermarkt"},
	},
	{
		Name:     "online_shops",
		Category: CategoryCost,
		Keywords: []string{"amazon", "zalando", "etsy", "otto", "ikea", "decathlon"},
	},
	{
		Name:     "saas_cloud",
		Category: CategoryCost,
		Keywords: []string{"aws", "azure", "gcp", "google cloud", "digitalocean", "vercel", "heroku"},
	},
	{
		Name:     "delivery",
		Category: CategoryCost,
		Keywords: []string{"uber eats", "lieferando", "doordash", "deliveroo"},
	},
	{
		Name:     "payments_income",
		Category: CategoryIncome,
		Keywords: []string{"stripe", "paypal", "klarna", "adyen", "shopify", "invoice", "customer payment"},
	},
	{
		Name:     "bank_interest",
		Category: CategoryIncome,
		Keywords: []string{"interest", "zinsen"},
	},
}
