package model

// Patient is the directory entry notifications are addressed to.
// Identity and demographics live with an external collaborator; this
// row only carries what the scheduling engine needs.
type Patient struct {
	Base
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
