package mason

import "github.com/inlibris/inlibris/internal/data"

// Client schemas embedded in the add/edit controls so hypermedia clients can
// build valid request bodies without out-of-band documentation. Validation
// itself happens server-side against the input structs in internal/data;
// these documents are advisory.

func patronBarcodeProp() map[string]any {
	return map[string]any{
		"description": "Patron's unique barcode",
		"type":        "integer",
		"minimum":     data.PatronBarcodeMin,
		"maximum":     data.PatronBarcodeMax,
	}
}

func bookBarcodeProp() map[string]any {
	return map[string]any{
		"description": "Book's unique barcode",
		"type":        "integer",
		"minimum":     data.BookBarcodeMin,
		"maximum":     data.BookBarcodeMax,
	}
}

func dateProp(description string) map[string]any {
	return map[string]any{
		"description": description,
		"type":        "string",
		"format":      "date",
	}
}

// PatronSchema describes the request body for adding or editing a patron.
func PatronSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"barcode", "firstname", "email"},
		"properties": map[string]any{
			"barcode": patronBarcodeProp(),
			"firstname": map[string]any{
				"description": "Patron's first name",
				"type":        "string",
			},
			"lastname": map[string]any{
				"description": "Patron's last name",
				"type":        "string",
			},
			"email": map[string]any{
				"description": "Patron's email address",
				"type":        "string",
				"format":      "email",
			},
			"group": map[string]any{
				"description": "Patron group",
				"type":        "string",
				"default":     data.DefaultPatronGroup,
			},
			"status": map[string]any{
				"description": "Account status",
				"type":        "string",
				"default":     data.DefaultPatronStatus,
			},
		},
	}
}

// BookSchema describes the request body for adding or editing a book.
func BookSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"barcode", "title", "pubyear"},
		"properties": map[string]any{
			"barcode": bookBarcodeProp(),
			"title": map[string]any{
				"description": "Book's title",
				"type":        "string",
			},
			"author": map[string]any{
				"description": "Book's author",
				"type":        "string",
			},
			"publisher": map[string]any{
				"description": "Book's publisher",
				"type":        "string",
			},
			"pubyear": map[string]any{
				"description": "Year of publication",
				"type":        "integer",
			},
			"format": map[string]any{
				"description": "Item format",
				"type":        "string",
				"default":     data.DefaultBookFormat,
			},
			"description": map[string]any{
				"description": "Free-text description",
				"type":        "string",
			},
			"loantime": map[string]any{
				"description": "Loan period in days",
				"type":        "integer",
				"default":     data.DefaultLoantime,
			},
			"renewlimit": map[string]any{
				"description": "Maximum number of renewals",
				"type":        "integer",
				"default":     data.DefaultRenewlimit,
			},
		},
	}
}

// AddLoanSchema describes the request body for borrowing a book.
func AddLoanSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"book_barcode"},
		"properties": map[string]any{
			"book_barcode": bookBarcodeProp(),
			"duedate":      dateProp("Date when the loan is due, defaults to loandate plus the book's loan time"),
		},
	}
}

// EditLoanSchema describes the request body for replacing an existing loan.
func EditLoanSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"book_barcode", "patron_barcode", "loandate", "duedate"},
		"properties": map[string]any{
			"book_barcode":   bookBarcodeProp(),
			"patron_barcode": patronBarcodeProp(),
			"loandate":       dateProp("Date when the book was loaned"),
			"renewaldate":    dateProp("Date when the loan was last renewed"),
			"duedate":        dateProp("Date when the loan is due"),
			"renewed": map[string]any{
				"description": "Number of times the loan has been renewed",
				"type":        "integer",
				"default":     0,
			},
			"status": map[string]any{
				"description": "The loan's status",
				"type":        "string",
				"default":     data.DefaultLoanStatus,
			},
		},
	}
}

// AddHoldSchema describes the request body for placing a hold.
func AddHoldSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"book_barcode"},
		"properties": map[string]any{
			"book_barcode":   bookBarcodeProp(),
			"expirationdate": dateProp("Date when the hold expires, defaults to 45 days from today"),
		},
	}
}
