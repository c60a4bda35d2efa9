package content

// Ref is a dereferenced name/slug pair (category, style, font, section type).
type Ref struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SectionShot is one UI screenshot attached to a website document.
type SectionShot struct {
	Key         string `json:"_key"`
	Image       string `json:"image"`
	Label       string `json:"label"`
	SectionType Ref    `json:"sectionType"`
}

// Site is a curated website document. Image fields are projected to asset
// URLs by the queries in groq.go.
type Site struct {
	ID         string        `json:"_id"`
	Name       string        `json:"name"`
	Slug       string        `json:"slug"`
	URL        string        `json:"url"`
	CoverImage string        `json:"coverImage"`
	Logo       string        `json:"logo"`
	Featured   bool          `json:"featured"`
	AddedDate  string        `json:"addedDate"` // ISO date, as stored in the CMS
	Category   *Ref          `json:"category"`
	Styles     []Ref         `json:"styles"`
	Fonts      []Ref         `json:"fonts"`
	Sections   []SectionShot `json:"sections"`
}

// WebsiteRef identifies the website a flattened section instance belongs to.
type WebsiteRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// SectionInstance is one screenshot in the sections gallery: a SectionShot
// joined with its owning website.
type SectionInstance struct {
	SectionShot
	Website WebsiteRef `json:"website"`
}

// Highlight is a single note attached to a blog document.
type Highlight struct {
	Key       string `json:"_key"`
	Highlight string `json:"highlight"`
}

// Blog is a blog/notes document.
type Blog struct {
	ID         string      `json:"_id"`
	Title      string      `json:"title"`
	AuthorName string      `json:"authorName"`
	AddedOn    string      `json:"addedOn"` // ISO date, as stored in the CMS
	SiteLink   string      `json:"siteLink"`
	Notes      []Highlight `json:"notes"`
}

// SearchData carries the facet lists consumed by the filter overlay.
type SearchData struct {
	Categories   []Ref `json:"categories"`
	Fonts        []Ref `json:"fonts"`
	Styles       []Ref `json:"styles"`
	SectionTypes []Ref `json:"sectionTypes"`
}
