package contentitem

import (
	"net/url"
	"strings"
)

// URLFormatter renders items and links each one to its resource under BaseURL.
// An empty BaseURL yields a root-relative link.
type URLFormatter struct {
	BaseURL string
}

// NewURLFormatter creates a formatter rooted at baseURL.
func NewURLFormatter(baseURL string) *URLFormatter {
	return &URLFormatter{BaseURL: baseURL}
}

func (f *URLFormatter) Format(item *Item) *ItemRepresentation {
	if item == nil {
		return nil
	}
	return &ItemRepresentation{
		ID:               item.ID,
		Name:             item.Name,
		MimeType:         item.MimeType,
		TenantID:         item.TenantID,
		ContentStoreID:   item.ContentStoreID,
		ContentStoreName: item.ContentStoreName,
		ContentAvailable: item.ContentAvailable,
		ContentSize:      item.ContentSize,
		Created:          item.Created,
		CreatedBy:        item.CreatedBy,
		LastModified:     item.LastModified,
		LastModifiedBy:   item.LastModifiedBy,
		URL:              f.itemURL(item.ID),
	}
}

func (f *URLFormatter) itemURL(id string) string {
	return strings.TrimRight(f.BaseURL, "/") + "/content-items/" + url.PathEscape(id)
}
