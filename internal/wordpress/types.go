package wordpress

// User is the identity provider's user record. The gateway only holds a
// read-through copy for the duration of one request.
type User struct {
	ID             int      `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	DisplayName    string   `json:"display_name"`
	Roles          []string `json:"roles"`
	RegisteredDate string   `json:"registered_date,omitempty"`
}

// AuthToken is the response of a successful login. The token itself is
// opaque; expiry is authoritative only at the issuer.
type AuthToken struct {
	Token           string `json:"token"`
	UserEmail       string `json:"user_email"`
	UserNicename    string `json:"user_nicename"`
	UserDisplayName string `json:"user_display_name"`
}

// LoginCredentials is the login request body.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterCredentials is the registration request body.
type RegisterCredentials struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UpdateProfileData is the profile update request body.
type UpdateProfileData struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// ChangePasswordData is the change-password request body.
type ChangePasswordData struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse is the provider's response to register, update-profile and
// change-password calls.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

// ValidationResult is the provider's token-validate response. Validity is
// a joint condition: the provider's own code string AND the nested status
// must both match; neither alone is sufficient.
type ValidationResult struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
}

// ValidTokenCode is the provider code string that, together with a nested
// status of 200, marks a token valid.
const ValidTokenCode = "jwt_auth_valid_token"

// OK reports whether the result is the exact success signal.
func (r *ValidationResult) OK() bool {
	return r != nil && r.Code == ValidTokenCode && r.Status == 200
}

// errorBody is the provider's error envelope: {code, message, data:{status}}.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

// Rendered holds WordPress rendered content fields.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a WordPress post as returned by /wp/v2/posts.
type Post struct {
	ID            int       `json:"id"`
	Date          string    `json:"date"`
	Modified      string    `json:"modified"`
	Slug          string    `json:"slug"`
	Status        string    `json:"status"`
	Link          string    `json:"link"`
	Title         Rendered  `json:"title"`
	Content       Rendered  `json:"content"`
	Excerpt       Rendered  `json:"excerpt"`
	Author        int       `json:"author"`
	FeaturedMedia int       `json:"featured_media"`
	Categories    []int     `json:"categories"`
	Tags          []int     `json:"tags"`
	Embedded      *Embedded `json:"_embedded,omitempty"`
}

// Page is a WordPress page as returned by /wp/v2/pages.
type Page struct {
	ID       int       `json:"id"`
	Date     string    `json:"date"`
	Slug     string    `json:"slug"`
	Status   string    `json:"status"`
	Link     string    `json:"link"`
	Title    Rendered  `json:"title"`
	Content  Rendered  `json:"content"`
	Parent   int       `json:"parent"`
	Embedded *Embedded `json:"_embedded,omitempty"`
}

// Embedded carries the related resources requested via _embed.
type Embedded struct {
	Author        []EmbeddedAuthor `json:"author,omitempty"`
	FeaturedMedia []EmbeddedMedia  `json:"wp:featuredmedia,omitempty"`
}

// EmbeddedAuthor is the embedded author summary.
type EmbeddedAuthor struct {
	ID      int               `json:"id"`
	Name    string            `json:"name"`
	Link    string            `json:"link"`
	Avatars map[string]string `json:"avatar_urls,omitempty"`
}

// EmbeddedMedia is the embedded featured-media summary.
type EmbeddedMedia struct {
	ID        int      `json:"id"`
	SourceURL string   `json:"source_url"`
	AltText   string   `json:"alt_text"`
	Title     Rendered `json:"title"`
}
