package content

import "strings"

// siteProjection is shared by every query returning website documents.
const siteProjection = `{
  _id,
  name,
  "slug": slug.current,
  url,
  "coverImage": coverImage.asset->url,
  "logo": logo.asset->url,
  featured,
  addedDate,
  category->{ name, "slug": slug.current },
  "styles": styles[]->{ name, "slug": slug.current },
  "fonts": fonts[]->{ name, "slug": slug.current }
}`

// SiteFilters narrows the site list. Empty fields are ignored.
type SiteFilters struct {
	Q          string
	Categories []string
	Fonts      []string
	Styles     []string
}

// sitesQuery builds the filtered site list query, newest additions first.
func sitesQuery(f SiteFilters) (string, map[string]any) {
	conditions := []string{`_type == "website"`}
	params := map[string]any{}

	if f.Q != "" {
		conditions = append(conditions, `(name match $q || category->name match $q)`)
		params["q"] = "*" + f.Q + "*"
	}
	if len(f.Categories) > 0 {
		conditions = append(conditions, `defined(category) && category->slug.current in $categories`)
		params["categories"] = f.Categories
	}
	if len(f.Fonts) > 0 {
		conditions = append(conditions, `count(fonts[]->slug.current[@ in $fonts]) > 0`)
		params["fonts"] = f.Fonts
	}
	if len(f.Styles) > 0 {
		conditions = append(conditions, `count(styles[]->slug.current[@ in $styles]) > 0`)
		params["styles"] = f.Styles
	}

	query := `*[` + strings.Join(conditions, " && ") + `] | order(addedDate desc) ` + siteProjection
	return query, params
}

// siteBySlugQuery returns a single website document with its section shots.
func siteBySlugQuery(slug string) (string, map[string]any) {
	query := `*[_type == "website" && slug.current == $slug][0]{
  _id,
  name,
  "slug": slug.current,
  url,
  "coverImage": coverImage.asset->url,
  "logo": logo.asset->url,
  featured,
  addedDate,
  category->{ name, "slug": slug.current },
  "styles": styles[]->{ name, "slug": slug.current },
  "fonts": fonts[]->{ name, "slug": slug.current },
  "sections": sections[]{
    _key,
    "image": image.asset->url,
    label,
    sectionType->{ name, "slug": slug.current }
  }
}`
	return query, map[string]any{"slug": slug}
}

// sitesByIDsQuery returns the website documents whose _id is in ids.
// Used by the bookmark folder pages.
func sitesByIDsQuery(ids []string) (string, map[string]any) {
	query := `*[_type == "website" && _id in $ids] | order(addedDate desc) ` + siteProjection
	return query, map[string]any{"ids": ids}
}

// SectionFilters narrows the flattened sections gallery.
type SectionFilters struct {
	Q           string
	SectionSlug string
}

// sectionsQuery returns websites with their section arrays filtered in the
// projection; the client flattens the result into SectionInstances.
func sectionsQuery(f SectionFilters) (string, map[string]any) {
	conditions := []string{`_type == "website"`, `defined(sections)`}
	params := map[string]any{}

	if f.Q != "" {
		conditions = append(conditions, `name match $q`)
		params["q"] = "*" + f.Q + "*"
	}

	sectionFilter := "true"
	if f.SectionSlug != "" && f.SectionSlug != "all" {
		sectionFilter = `sectionType->slug.current == $sectionSlug`
		params["sectionSlug"] = f.SectionSlug
	}

	query := `*[` + strings.Join(conditions, " && ") + `] {
  name,
  "slug": slug.current,
  url,
  "sections": sections[` + sectionFilter + `] {
    _key,
    "image": image.asset->url,
    label,
    sectionType->{ name, "slug": slug.current }
  }
}`
	return query, params
}

const blogsQuery = `*[_type == "blog"] | order(addedOn desc) {
  _id,
  title,
  authorName,
  addedOn,
  siteLink,
  notes[] { _key, highlight }
}`

// searchDataQuery returns every facet list in one round trip.
const searchDataQuery = `{
  "categories": *[_type == "category"] | order(name asc) { name, "slug": slug.current },
  "fonts": *[_type == "font"] | order(name asc) { name, "slug": slug.current },
  "styles": *[_type == "style"] | order(name asc) { name, "slug": slug.current },
  "sectionTypes": *[_type == "section"] | order(name asc) { name, "slug": slug.current }
}`
