package mediawiki

// APIError is the error object MediaWiki returns with a 200 status
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Continue holds the continuation token for the next categorymembers page
type Continue struct {
	CMContinue string `json:"cmcontinue"`
	Continue   string `json:"continue"`
}

// CategoryMember is one page of the category. NS 0 is the main namespace.
type CategoryMember struct {
	PageID int64  `json:"pageid"`
	NS     int    `json:"ns"`
	Title  string `json:"title"`
}

// CategoryMembersResponse is the categorymembers query response
type CategoryMembersResponse struct {
	Query *struct {
		CategoryMembers []CategoryMember `json:"categorymembers"`
	} `json:"query"`
	Continue *Continue `json:"continue"`
	Error    *APIError `json:"error"`
}

// NextToken returns the continuation token, or "" on the last page
func (r *CategoryMembersResponse) NextToken() string {
	if r.Continue == nil {
		return ""
	}
	return r.Continue.CMContinue
}

// ImageRef is a file embedded in a page
type ImageRef struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

// ImageInfo holds the direct URL of a file
type ImageInfo struct {
	URL            string `json:"url"`
	DescriptionURL string `json:"descriptionurl"`
}

// Page is one entry of the pages map. Missing is set for titles that do
// not exist.
type Page struct {
	PageID    int64       `json:"pageid"`
	NS        int         `json:"ns"`
	Title     string      `json:"title"`
	Missing   *string     `json:"missing"`
	Images    []ImageRef  `json:"images"`
	ImageInfo []ImageInfo `json:"imageinfo"`
}

// PagesResponse is the response of prop=images and prop=imageinfo queries.
// Pages is keyed by page id, "-1" for missing titles.
type PagesResponse struct {
	Query *struct {
		Pages map[string]Page `json:"pages"`
	} `json:"query"`
	Error *APIError `json:"error"`
}
