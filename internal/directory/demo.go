package directory

import "github.com/bindinc/agentdesk/internal/types"

// DemoCustomers is the seed set used when the workstation runs without a
// customer subsystem to sync from.
func DemoCustomers() []types.Customer {
	return []types.Customer{
		{ID: 1, Initials: "J.", FirstName: "Jan", LastName: "Jansen", Phone: "+31612345678", Email: "j.jansen@example.nl"},
		{ID: 2, Initials: "P.", FirstName: "Petra", MiddleName: "van der", LastName: "Berg", Phone: "+31623456789", Email: "p.vdberg@example.nl"},
		{ID: 3, Initials: "M.", FirstName: "Mohammed", LastName: "El Amrani", Phone: "+31634567890", Email: "m.elamrani@example.nl"},
		{ID: 4, Initials: "S.", FirstName: "Sanne", MiddleName: "de", LastName: "Vries", Phone: "+31645678901", Email: "s.devries@example.nl"},
		{ID: 5, Initials: "K.", FirstName: "Kees", LastName: "Bakker", Phone: "+31656789012", Email: "k.bakker@example.nl"},
		{ID: 6, Initials: "A.", FirstName: "Anouk", LastName: "Visser", Phone: "+31667890123", Email: "a.visser@example.nl"},
		{ID: 7, Initials: "W.", FirstName: "Willem", MiddleName: "van", LastName: "Dijk", Phone: "+31678901234", Email: "w.vandijk@example.nl"},
		{ID: 8, Initials: "F.", FirstName: "Fatima", LastName: "Yilmaz", Phone: "+31689012345", Email: "f.yilmaz@example.nl"},
	}
}

// SeedDemo loads the demo customers with a little starting history so the
// contact-history panel is not empty on first run.
func (d *Directory) SeedDemo() {
	d.Seed(DemoCustomers())
	d.AddContactMoment(1, types.MomentNote, "Klant gebeld over bezorging, wacht op reactie")
	d.AddContactMoment(2, types.MomentCallDisposition, "Abonnement: Abonnement gewijzigd")
	d.AddContactMoment(5, types.MomentNote, "Betaalherinnering verstuurd")
}
