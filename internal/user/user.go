package user

type User struct {
	ID        int    `json:"userId"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt,omitempty"`
}
