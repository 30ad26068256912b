package mediawiki

import "strconv"

const (
	// DefaultPageSize is the number of category members requested per page
	DefaultPageSize = 50

	// MaxPageSize is the largest cmlimit accepted for anonymous clients
	MaxPageSize = 500
)

// Endpoint names used in logs and metrics
const (
	EndpointCategoryMembers = "categorymembers"
	EndpointImages          = "images"
	EndpointImageInfo       = "imageinfo"
)

func baseParams() map[string]string {
	return map[string]string{
		"action": "query",
		"format": "json",
	}
}

// CategoryMembersParams builds a categorymembers query. An empty
// continuation requests the first page.
func CategoryMembersParams(category string, limit int, continuation string) map[string]string {
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}

	params := baseParams()
	params["list"] = "categorymembers"
	params["cmtitle"] = category
	params["cmlimit"] = strconv.Itoa(limit)
	params["cmtype"] = "page"
	if continuation != "" {
		params["cmcontinue"] = continuation
	}
	return params
}

// ImagesParams builds a query for the images embedded in a page
func ImagesParams(title string) map[string]string {
	params := baseParams()
	params["prop"] = "images"
	params["titles"] = title
	return params
}

// ImageInfoParams builds a query for the direct URL of a file page
func ImageInfoParams(fileTitle string) map[string]string {
	params := baseParams()
	params["prop"] = "imageinfo"
	params["iiprop"] = "url"
	params["titles"] = fileTitle
	return params
}
