package domain

var Tables = []interface{}{
	// System
	&User{},
	// Catalog
	&Category{},
	&Commodity{},
}
