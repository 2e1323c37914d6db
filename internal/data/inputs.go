package data

import "github.com/inlibris/inlibris/internal/validator"

// Barcode number ranges: patrons are issued 1xxxxx cards, books carry
// 2xxxxx labels.
const (
	PatronBarcodeMin = 100000
	PatronBarcodeMax = 199999
	BookBarcodeMin   = 200000
	BookBarcodeMax   = 299999
)

// Defaults applied to optional fields omitted from request payloads.
const (
	DefaultPatronGroup  = "Customer"
	DefaultPatronStatus = "Active"
	DefaultBookFormat   = "book"
	DefaultLoantime     = 28 // days
	DefaultRenewlimit   = 10
	DefaultLoanStatus   = "Charged"
	DefaultHoldStatus   = "Requested"
	DefaultHoldDays     = 45 // hold expiration, days from holddate
)

// PatronInput holds the fields a client supplies when creating or replacing
// a patron. Required fields are plain values (the zero value fails
// validation); optional fields are pointers where nil means "not provided,
// use the default".
type PatronInput struct {
	Barcode   int64   `json:"barcode"`
	Firstname string  `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Email     string  `json:"email"`
	Group     *string `json:"group"`
	Status    *string `json:"status"`
}

// Validate records any field-level problems on v.
func (in *PatronInput) Validate(v *validator.Validator) {
	v.Check(in.Barcode != 0, "barcode", "must be provided")
	v.Check(validator.InRange(in.Barcode, PatronBarcodeMin, PatronBarcodeMax), "barcode", "must be a patron barcode between 100000 and 199999")
	v.Check(in.Firstname != "", "firstname", "must be provided")
	v.Check(in.Email != "", "email", "must be provided")
	v.Check(in.Email == "" || validator.Matches(in.Email, validator.EmailRX), "email", "must be a valid email address")
}

// ToPatron maps the input onto a Patron record, applying defaults for
// omitted optional fields. The caller supplies the registration date: the
// current date on create, the existing record's date on replace.
func (in *PatronInput) ToPatron(regdate Date) *Patron {
	patron := &Patron{
		Barcode:   in.Barcode,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     in.Email,
		Group:     DefaultPatronGroup,
		Status:    DefaultPatronStatus,
		Regdate:   regdate,
	}
	if in.Group != nil {
		patron.Group = *in.Group
	}
	if in.Status != nil {
		patron.Status = *in.Status
	}
	return patron
}

// BookInput holds the fields a client supplies when creating or replacing a book.
type BookInput struct {
	Barcode     int64   `json:"barcode"`
	Title       string  `json:"title"`
	Author      *string `json:"author"`
	Publisher   *string `json:"publisher"`
	Pubyear     int     `json:"pubyear"`
	Format      *string `json:"format"`
	Description *string `json:"description"`
	Loantime    *int    `json:"loantime"`
	Renewlimit  *int    `json:"renewlimit"`
}

// Validate records any field-level problems on v.
func (in *BookInput) Validate(v *validator.Validator) {
	v.Check(in.Barcode != 0, "barcode", "must be provided")
	v.Check(validator.InRange(in.Barcode, BookBarcodeMin, BookBarcodeMax), "barcode", "must be a book barcode between 200000 and 299999")
	v.Check(in.Title != "", "title", "must be provided")
	v.Check(in.Pubyear != 0, "pubyear", "must be provided")
	if in.Loantime != nil {
		v.Check(*in.Loantime > 0, "loantime", "must be a positive number of days")
	}
	if in.Renewlimit != nil {
		v.Check(*in.Renewlimit >= 0, "renewlimit", "must not be negative")
	}
}

// ToBook maps the input onto a Book record, applying defaults for omitted
// optional fields.
func (in *BookInput) ToBook() *Book {
	book := &Book{
		Barcode:    in.Barcode,
		Title:      in.Title,
		Author:     in.Author,
		Publisher:  in.Publisher,
		Pubyear:    in.Pubyear,
		Format:     DefaultBookFormat,
		Loantime:   DefaultLoantime,
		Renewlimit: DefaultRenewlimit,
	}
	if in.Format != nil {
		book.Format = *in.Format
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.Loantime != nil {
		book.Loantime = *in.Loantime
	}
	if in.Renewlimit != nil {
		book.Renewlimit = *in.Renewlimit
	}
	return book
}

// AddLoanInput holds the fields a client supplies when borrowing a book.
// The due date defaults to the loan date plus the book's loan time.
type AddLoanInput struct {
	BookBarcode int64 `json:"book_barcode"`
	Duedate     *Date `json:"duedate"`
}

// Validate records any field-level problems on v.
func (in *AddLoanInput) Validate(v *validator.Validator) {
	v.Check(in.BookBarcode != 0, "book_barcode", "must be provided")
	v.Check(validator.InRange(in.BookBarcode, BookBarcodeMin, BookBarcodeMax), "book_barcode", "must be a book barcode between 200000 and 299999")
}

// EditLoanInput holds the full replacement document for an existing loan.
type EditLoanInput struct {
	BookBarcode   int64   `json:"book_barcode"`
	PatronBarcode int64   `json:"patron_barcode"`
	Loandate      Date    `json:"loandate"`
	Duedate       Date    `json:"duedate"`
	Renewaldate   *Date   `json:"renewaldate"`
	Renewed       *int    `json:"renewed"`
	Status        *string `json:"status"`
}

// Validate records any field-level problems on v.
func (in *EditLoanInput) Validate(v *validator.Validator) {
	v.Check(in.BookBarcode != 0, "book_barcode", "must be provided")
	v.Check(validator.InRange(in.BookBarcode, BookBarcodeMin, BookBarcodeMax), "book_barcode", "must be a book barcode between 200000 and 299999")
	v.Check(in.PatronBarcode != 0, "patron_barcode", "must be provided")
	v.Check(validator.InRange(in.PatronBarcode, PatronBarcodeMin, PatronBarcodeMax), "patron_barcode", "must be a patron barcode between 100000 and 199999")
	v.Check(!in.Loandate.IsZero(), "loandate", "must be provided")
	v.Check(!in.Duedate.IsZero(), "duedate", "must be provided")
	if in.Renewed != nil {
		v.Check(*in.Renewed >= 0, "renewed", "must not be negative")
	}
}

// ToLoan maps the input onto a replacement Loan record for the given book
// and patron, applying defaults for omitted optional fields.
func (in *EditLoanInput) ToLoan(bookID, patronID int64) *Loan {
	loan := &Loan{
		BookID:      bookID,
		PatronID:    &patronID,
		Loandate:    in.Loandate,
		Renewaldate: in.Renewaldate,
		Duedate:     in.Duedate,
		Renewed:     0,
		Status:      DefaultLoanStatus,
	}
	if in.Renewed != nil {
		loan.Renewed = *in.Renewed
	}
	if in.Status != nil {
		loan.Status = *in.Status
	}
	return loan
}

// AddHoldInput holds the fields a client supplies when placing a hold.
// The expiration date defaults to DefaultHoldDays from today.
type AddHoldInput struct {
	BookBarcode    int64 `json:"book_barcode"`
	Expirationdate *Date `json:"expirationdate"`
}

// Validate records any field-level problems on v.
func (in *AddHoldInput) Validate(v *validator.Validator) {
	v.Check(in.BookBarcode != 0, "book_barcode", "must be provided")
	v.Check(validator.InRange(in.BookBarcode, BookBarcodeMin, BookBarcodeMax), "book_barcode", "must be a book barcode between 200000 and 299999")
}
