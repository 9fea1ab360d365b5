package classify

// Rule is one row of a rule table.
type Rule struct {
	Selector string
	Label    string
	Color    string
}

// Rules holds the fixed rule tables, one per stage.
type Rules struct {
	Layout       []Rule
	Articles     []Rule
	ArticleList  Rule
	Cards        []Rule
	CardSamples  int
	CommentColor string
	Widgets      []Rule
	AdAttr       string
	AdColor      string
}

// DefaultRules returns the built-in rule tables.
func DefaultRules() Rules {
	return Rules{
		Layout: []Rule{
			{".tf-lhs-col", "LHS Column", "#ff0055"},
			{".tf-rhs-col", "RHS Column", "#ff6600"},
			{".header", "Header", "#9933ff"},
			{".footer", "Footer", "#666666"},
		},
		Articles: []Rule{
			{".in-focus", "In Focus Widget", "#0099ff"},
			{".featured", "Featured Article", "#0099ff"},
		},
		ArticleList: Rule{".article-list--container", "Article List Container", "#0066cc"},
		Cards: []Rule{
			{".article-item.thumb--small", "Small Thumb Card", "#33ccff"},
			{".article-item.thumb--medium", "Medium Thumb Card", "#33aaff"},
		},
		CardSamples:  3,
		CommentColor: "#00cc66",
		Widgets: []Rule{
			{".most-read-widget", "Most Read Widget", "#00cc66"},
			{".vote-widget", "Vote Widget", "#00cc66"},
			{".newsletter-subscription", "Newsletter Subscription", "#00cc66"},
			{".traffic-widget", "Traffic Widget", "#00cc66"},
			{".site-search-query", "Search Widget", "#00cc66"},
		},
		AdAttr:  "data-adname",
		AdColor: "#bc13fe",
	}
}
