package enum

// Collection names a per-tenant document collection whose changes are
// broadcast to realtime subscribers.
type Collection string

const (
	CollectionSettings  Collection = "companySettings"
	CollectionTemplates Collection = "templates"
	CollectionInquiries Collection = "inquiries"
	CollectionQuotes    Collection = "quotations"
	CollectionClients   Collection = "clients"
)

func (c Collection) String() string {
	return string(c)
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	switch c {
	case CollectionSettings, CollectionTemplates, CollectionInquiries, CollectionQuotes, CollectionClients:
		return true
	}
	return false
}
