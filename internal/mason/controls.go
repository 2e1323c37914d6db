package mason

import "fmt"

// URL builders for every addressable resource. Handlers use these for
// Location headers as well, so the hrefs in controls and headers can never
// drift apart.

func PatronCollectionURL() string        { return BasePath + "/patrons/" }
func PatronURL(patronID int64) string    { return fmt.Sprintf("%s/patrons/%d/", BasePath, patronID) }
func BookCollectionURL() string          { return BasePath + "/books/" }
func BookURL(bookID int64) string        { return fmt.Sprintf("%s/books/%d/", BasePath, bookID) }
func LoanOfBookURL(bookID int64) string  { return fmt.Sprintf("%s/books/%d/loan/", BasePath, bookID) }
func LoansByPatronURL(id int64) string   { return fmt.Sprintf("%s/patrons/%d/loans/", BasePath, id) }
func HoldsByPatronURL(id int64) string   { return fmt.Sprintf("%s/patrons/%d/holds/", BasePath, id) }
func HoldsOnBookURL(bookID int64) string { return fmt.Sprintf("%s/books/%d/holds/", BasePath, bookID) }

func HoldURL(patronID, holdID int64) string {
	return fmt.Sprintf("%s/patrons/%d/holds/%d/", BasePath, patronID, holdID)
}

// Application-specific control builders, one per link relation the API
// advertises. Namespaced relations carry the "inlibris:" prefix.

func (d Document) AddControlAllPatrons() {
	d.AddControl(Namespace+":patrons-all", Control{
		Href:   PatronCollectionURL(),
		Method: "GET",
		Title:  "All patrons",
	})
}

func (d Document) AddControlAllBooks() {
	d.AddControl(Namespace+":books-all", Control{
		Href:   BookCollectionURL(),
		Method: "GET",
		Title:  "All books",
	})
}

func (d Document) AddControlAddPatron() {
	d.AddControl(Namespace+":add-patron", Control{
		Href:     PatronCollectionURL(),
		Method:   "POST",
		Encoding: "json",
		Title:    "Add a patron",
		Schema:   PatronSchema(),
	})
}

func (d Document) AddControlEditPatron(patronID int64) {
	d.AddControl("edit", Control{
		Href:     PatronURL(patronID),
		Method:   "PUT",
		Encoding: "json",
		Title:    "Edit this patron",
		Schema:   PatronSchema(),
	})
}

func (d Document) AddControlDeletePatron(patronID int64) {
	d.AddControl(Namespace+":delete", Control{
		Href:   PatronURL(patronID),
		Method: "DELETE",
		Title:  "Delete this patron",
	})
}

func (d Document) AddControlAddBook() {
	d.AddControl(Namespace+":add-book", Control{
		Href:     BookCollectionURL(),
		Method:   "POST",
		Encoding: "json",
		Title:    "Add a book",
		Schema:   BookSchema(),
	})
}

func (d Document) AddControlEditBook(bookID int64) {
	d.AddControl("edit", Control{
		Href:     BookURL(bookID),
		Method:   "PUT",
		Encoding: "json",
		Title:    "Edit this book",
		Schema:   BookSchema(),
	})
}

func (d Document) AddControlDeleteBook(bookID int64) {
	d.AddControl(Namespace+":delete", Control{
		Href:   BookURL(bookID),
		Method: "DELETE",
		Title:  "Delete this book",
	})
}

func (d Document) AddControlLoansBy(patronID int64) {
	d.AddControl(Namespace+":loans-by", Control{
		Href:   LoansByPatronURL(patronID),
		Method: "GET",
		Title:  "Loans by patron",
	})
}

func (d Document) AddControlAddLoan(patronID int64) {
	d.AddControl(Namespace+":add-loan", Control{
		Href:     LoansByPatronURL(patronID),
		Method:   "POST",
		Encoding: "json",
		Title:    "Add a new loan to this patron",
		Schema:   AddLoanSchema(),
	})
}

func (d Document) AddControlEditLoan(bookID int64) {
	d.AddControl("edit", Control{
		Href:     LoanOfBookURL(bookID),
		Method:   "PUT",
		Encoding: "json",
		Title:    "Edit this loan",
		Schema:   EditLoanSchema(),
	})
}

func (d Document) AddControlDeleteLoan(bookID int64) {
	d.AddControl(Namespace+":delete", Control{
		Href:   LoanOfBookURL(bookID),
		Method: "DELETE",
		Title:  "Delete this loan",
	})
}

func (d Document) AddControlLoanOf(bookID int64) {
	d.AddControl(Namespace+":loan-of", Control{
		Href:   LoanOfBookURL(bookID),
		Method: "GET",
		Title:  "Loan of book",
	})
}

func (d Document) AddControlHoldsBy(patronID int64) {
	d.AddControl(Namespace+":holds-by", Control{
		Href:   HoldsByPatronURL(patronID),
		Method: "GET",
		Title:  "Holds by patron",
	})
}

func (d Document) AddControlHoldsOn(bookID int64) {
	d.AddControl(Namespace+":holds-on", Control{
		Href:   HoldsOnBookURL(bookID),
		Method: "GET",
		Title:  "Holds on book",
	})
}

func (d Document) AddControlAddHold(patronID int64) {
	d.AddControl(Namespace+":add-hold", Control{
		Href:     HoldsByPatronURL(patronID),
		Method:   "POST",
		Encoding: "json",
		Title:    "Add a new hold for this patron",
		Schema:   AddHoldSchema(),
	})
}

func (d Document) AddControlDeleteHold(patronID, holdID int64) {
	d.AddControl(Namespace+":delete", Control{
		Href:   HoldURL(patronID, holdID),
		Method: "DELETE",
		Title:  "Delete this hold",
	})
}

func (d Document) AddControlTargetBook(bookID int64) {
	d.AddControl(Namespace+":target-book", Control{
		Href:   BookURL(bookID),
		Method: "GET",
		Title:  "Target book",
	})
}
