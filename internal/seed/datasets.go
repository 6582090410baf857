package seed

import "filmloc/internal/catalog"

var (
	intp   = catalog.IntPtr
	floatp = catalog.FloatPtr
)

// Sample is the starter dataset: four well-known productions and one
// location for each.
func Sample() Dataset {
	return Dataset{
		Name: "sample",
		Productions: []catalog.ProductionInput{
			{
				Title:       "The Lord of the Rings: The Fellowship of the Ring",
				Type:        catalog.ProductionMovie,
				ReleaseYear: intp(2001),
				IMDbID:      "tt0120737",
				Genres:      []string{"Adventure", "Fantasy", "Drama"},
				Description: "A meek Hobbit and eight companions set out on a journey to destroy the powerful One Ring.",
			},
			{
				Title:       "The Dark Knight",
				Type:        catalog.ProductionMovie,
				ReleaseYear: intp(2008),
				IMDbID:      "tt0468569",
				Genres:      []string{"Action", "Crime", "Drama"},
				Description: "When the menace known as the Joker wreaks havoc on Gotham, Batman must confront him.",
			},
			{
				Title:       "Game of Thrones",
				Type:        catalog.ProductionTVShow,
				ReleaseYear: intp(2011),
				IMDbID:      "tt0944947",
				Genres:      []string{"Drama", "Fantasy", "Adventure"},
				Description: "Nine noble families fight for control over the lands of Westeros.",
			},
			{
				Title:       "Inception",
				Type:        catalog.ProductionMovie,
				ReleaseYear: intp(2010),
				IMDbID:      "tt1375666",
				Genres:      []string{"Action", "Sci-Fi", "Thriller"},
				Description: "A thief who steals corporate secrets through dream-sharing technology.",
			},
		},
		Locations: []catalog.LocationInput{
			{
				Name:          "Hobbiton Movie Set",
				Address:       "501 Buckland Rd",
				City:          "Matamata",
				StateProvince: "Waikato",
				Country:       "New Zealand",
				Latitude:      floatp(-37.872093),
				Longitude:     floatp(175.683594),
				LocationType:  "set",
				Accessibility: "public",
				Description:   "The famous Hobbiton movie set from LOTR and The Hobbit",
			},
			{
				Name:          "Lower Wacker Drive",
				City:          "Chicago",
				StateProvince: "Illinois",
				Country:       "USA",
				Latitude:      floatp(41.8873),
				Longitude:     floatp(-87.6303),
				LocationType:  "street",
				Accessibility: "public",
				Description:   "Underground street system used for chase scenes",
			},
			{
				Name:          "Dubrovnik Old Town",
				City:          "Dubrovnik",
				Country:       "Croatia",
				Latitude:      floatp(42.6507),
				Longitude:     floatp(18.0944),
				LocationType:  "city",
				Accessibility: "public",
				Description:   "Historic walled city used as King's Landing",
			},
			{
				Name:          "Château de Chambord",
				City:          "Chambord",
				StateProvince: "Centre-Val de Loire",
				Country:       "France",
				Latitude:      floatp(47.6161),
				Longitude:     floatp(1.5173),
				LocationType:  "building",
				Accessibility: "public",
				Description:   "Renaissance château used for dream sequences",
			},
		},
		Links: []Link{
			{
				Production: "The Lord of the Rings: The Fellowship of the Ring",
				Location:   "Hobbiton Movie Set",
				Info:       catalog.FilmingInfo{SceneDescription: "The Shire - Hobbiton village scenes", Verified: true},
			},
			{
				Production: "The Dark Knight",
				Location:   "Lower Wacker Drive",
				Info:       catalog.FilmingInfo{SceneDescription: "The Batmobile chase scene through Gotham's underground", Verified: true},
			},
			{
				Production: "Game of Thrones",
				Location:   "Dubrovnik Old Town",
				Info:       catalog.FilmingInfo{SceneDescription: "King's Landing exterior shots", Season: intp(2), Verified: true},
			},
			{
				Production: "Inception",
				Location:   "Château de Chambord",
				Info:       catalog.FilmingInfo{SceneDescription: "The elaborate dream architecture sequences", Verified: true},
			},
		},
	}
}

// More is the follow-up dataset with five further productions.
func More() Dataset {
	return Dataset{
		Name: "more",
		Productions: []catalog.ProductionInput{
			{
				Title:       "The Matrix",
				Type:        catalog.ProductionMovie,
				ReleaseYear: intp(1999),
				IMDbID:      "tt0133093",
				Genres:      []string{"Action", "Sci-Fi"},
				Description: "A computer programmer discovers that reality as he knows it is a simulation.",
			},
			{
				Title:       "Blade Runner 2049",
				Type:        catalog.ProductionMovie,
				ReleaseYear: intp(2017),
				IMDbID:      "tt1856101",
				Genres:      []string{"Sci-Fi", "Drama"},
				Description: "A young blade runner's discovery of a secret leads him to track down former blade runner Rick Deckard.",
			},
			{
				Title:       "The Office",
				Type:        catalog.ProductionTVShow,
				ReleaseYear: intp(2005),
				IMDbID:      "tt0386676",
				Genres:      []string{"Comedy"},
				Description: "A mockumentary about the everyday lives of office employees.",
			},
			{
				Title:       "Jurassic Park",
				Type:        catalog.ProductionMovie,
				ReleaseYear: intp(1993),
				IMDbID:      "tt0107290",
				Genres:      []string{"Adventure", "Sci-Fi"},
				Description: "A pragmatic paleontologist visits an almost complete theme park on an island in Central America.",
			},
			{
				Title:       "Black Panther",
				Type:        catalog.ProductionMovie,
				ReleaseYear: intp(2018),
				IMDbID:      "tt1825683",
				Genres:      []string{"Action", "Adventure"},
				Description: "T'Challa returns home as king of Wakanda but finds his sovereignty challenged.",
			},
		},
		Locations: []catalog.LocationInput{
			{
				Name:          "Sydney Harbour Bridge",
				City:          "Sydney",
				StateProvince: "New South Wales",
				Country:       "Australia",
				Latitude:      floatp(-33.8523),
				Longitude:     floatp(151.2108),
				LocationType:  "bridge",
				Accessibility: "public",
				Description:   "Iconic bridge and Sydney landmark",
			},
			{
				Name:          "Origo Film Studios",
				City:          "Budapest",
				Country:       "Hungary",
				Latitude:      floatp(47.4979),
				Longitude:     floatp(19.0402),
				LocationType:  "studio",
				Accessibility: "private",
				Description:   "Major film production facility",
			},
			{
				Name:          "Chandler Valley Center Studios",
				City:          "Van Nuys",
				StateProvince: "California",
				Country:       "USA",
				Latitude:      floatp(34.1899),
				Longitude:     floatp(-118.4489),
				LocationType:  "studio",
				Accessibility: "private",
				Description:   "TV production studio complex",
			},
			{
				Name:          "Kualoa Ranch",
				City:          "Kaneohe",
				StateProvince: "Hawaii",
				Country:       "USA",
				Latitude:      floatp(21.5329),
				Longitude:     floatp(-157.8309),
				LocationType:  "ranch",
				Accessibility: "public",
				Description:   "4000-acre private nature reserve and working cattle ranch",
			},
			{
				Name:          "High Museum of Art",
				City:          "Atlanta",
				StateProvince: "Georgia",
				Country:       "USA",
				Latitude:      floatp(33.7905),
				Longitude:     floatp(-84.3852),
				LocationType:  "museum",
				Accessibility: "public",
				Description:   "Leading art museum in the Southeast",
			},
		},
		Links: []Link{
			{
				Production: "The Matrix",
				Location:   "Sydney Harbour Bridge",
				Info:       catalog.FilmingInfo{SceneDescription: "Neo's office building exterior shots", Verified: true},
			},
			{
				Production: "Blade Runner 2049",
				Location:   "Origo Film Studios",
				Info:       catalog.FilmingInfo{SceneDescription: "Interior sets including Wallace Corporation", Verified: true},
			},
			{
				Production: "The Office",
				Location:   "Chandler Valley Center Studios",
				Info:       catalog.FilmingInfo{SceneDescription: "Dunder Mifflin office interiors", Season: intp(1), Verified: true},
			},
			{
				Production: "Jurassic Park",
				Location:   "Kualoa Ranch",
				Info:       catalog.FilmingInfo{SceneDescription: "Dinosaur stampede scene and gallimimus chase", Verified: true},
			},
			{
				Production: "Black Panther",
				Location:   "High Museum of Art",
				Info:       catalog.FilmingInfo{SceneDescription: "Museum heist scene in the film's opening", Verified: true},
			},
		},
	}
}

// ByName returns the named dataset.
func ByName(name string) (Dataset, bool) {
	switch name {
	case "sample":
		return Sample(), true
	case "more":
		return More(), true
	default:
		return Dataset{}, false
	}
}
