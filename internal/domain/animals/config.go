package animals

// WeightRange es el rango esperado de peso (kg) para una especie.
// Quedar fuera del rango produce warning, no error (guía suave, no bloqueo).
type WeightRange struct {
	Min float64
	Max float64
}

// SpeciesConfig describe los parámetros por especie que usan el validador
// y el generador de identificadores.
type SpeciesConfig struct {
	Label          string
	Prefix         string // prefijo de 2 letras del registry ID (BV, EQ, ...)
	Breeds         []string
	Colors         []string
	MaxAge         float64
	MinBreedingAge float64
	WeightRange    WeightRange
}

// RoleConfig describe un rol y los módulos downstream asociados.
type RoleConfig struct {
	Description       string
	AssociatedModules []string
}

// Config agrupa las tablas de configuración del registro.
// Se inyecta explícitamente (nunca estado global): así se pueden agregar
// especies/roles sin tocar el core, y los tests controlan las tablas.
type Config struct {
	Species map[Species]SpeciesConfig
	Roles   map[Role]RoleConfig
}

// SpeciesFor devuelve la config de una especie y si existe.
func (c Config) SpeciesFor(sp Species) (SpeciesConfig, bool) {
	sc, ok := c.Species[sp]
	return sc, ok
}

// KnownSpecies devuelve las especies configuradas en orden estable.
func (c Config) KnownSpecies() []Species {
	all := []Species{SpeciesBovine, SpeciesEquine, SpeciesCamel, SpeciesOvine, SpeciesCaprine, SpeciesSwine}
	out := make([]Species, 0, len(c.Species))
	for _, sp := range all {
		if _, ok := c.Species[sp]; ok {
			out = append(out, sp)
		}
	}
	return out
}

// KnownRole responde si el rol está configurado.
func (c Config) KnownRole(r Role) bool {
	_, ok := c.Roles[r]
	return ok
}

// DefaultConfig devuelve las tablas estándar del registro.
func DefaultConfig() Config {
	return Config{
		Species: map[Species]SpeciesConfig{
			SpeciesBovine: {
				Label:          "Bovine (Cattle)",
				Prefix:         "BV",
				Breeds:         []string{"Holstein", "Angus", "Hereford", "Brahman", "Simmental", "Charolais"},
				Colors:         []string{"Black & White", "Brown", "Red", "White", "Black", "Tan"},
				MaxAge:         25,
				MinBreedingAge: 2,
				WeightRange:    WeightRange{Min: 200, Max: 1200},
			},
			SpeciesEquine: {
				Label:          "Equine (Horse)",
				Prefix:         "EQ",
				Breeds:         []string{"Arabian", "Thoroughbred", "Quarter Horse", "Friesian", "Clydesdale", "Mustang"},
				Colors:         []string{"Chestnut", "Bay", "Black", "Gray", "Palomino", "Pinto"},
				MaxAge:         30,
				MinBreedingAge: 3,
				WeightRange:    WeightRange{Min: 300, Max: 1000},
			},
			SpeciesCamel: {
				Label:          "Camel",
				Prefix:         "CM",
				Breeds:         []string{"Dromedary", "Bactrian", "Hybrid", "Racing Camel", "Dairy Camel"},
				Colors:         []string{"Light Brown", "Dark Brown", "Tan", "Cream", "Golden"},
				MaxAge:         40,
				MinBreedingAge: 4,
				WeightRange:    WeightRange{Min: 400, Max: 800},
			},
			SpeciesOvine: {
				Label:          "Ovine (Sheep)",
				Prefix:         "OV",
				Breeds:         []string{"Merino", "Suffolk", "Dorper", "Romney", "Leicester", "Corriedale"},
				Colors:         []string{"White", "Black", "Brown", "Gray", "Mixed"},
				MaxAge:         15,
				MinBreedingAge: 1,
				WeightRange:    WeightRange{Min: 40, Max: 150},
			},
			SpeciesCaprine: {
				Label:          "Caprine (Goat)",
				Prefix:         "CP",
				Breeds:         []string{"Nubian", "Boer", "Alpine", "Saanen", "Toggenburg", "Nigerian Dwarf"},
				Colors:         []string{"White", "Brown", "Black", "Mixed", "Tan"},
				MaxAge:         15,
				MinBreedingAge: 1,
				WeightRange:    WeightRange{Min: 20, Max: 100},
			},
			SpeciesSwine: {
				Label:          "Swine (Pig)",
				Prefix:         "SW",
				Breeds:         []string{"Yorkshire", "Hampshire", "Duroc", "Landrace", "Pietrain", "Chester White"},
				Colors:         []string{"Pink", "Black", "White", "Spotted", "Red"},
				MaxAge:         12,
				MinBreedingAge: 1,
				WeightRange:    WeightRange{Min: 50, Max: 400},
			},
		},
		Roles: map[Role]RoleConfig{
			RoleDonor: {
				Description:       "Animal used for genetic material donation",
				AssociatedModules: []string{"flushing", "embryo-collection", "breeding"},
			},
			RoleRecipient: {
				Description:       "Animal receiving embryos or genetic material",
				AssociatedModules: []string{"embryo-transfer", "pregnancy-monitoring"},
			},
			RoleSire: {
				Description:       "Male breeding animal",
				AssociatedModules: []string{"semen-collection", "breeding", "genomics"},
			},
			RoleLabSample: {
				Description:       "Animal providing samples for laboratory analysis",
				AssociatedModules: []string{"laboratory", "lab-results", "biobank"},
			},
			RoleReference: {
				Description:       "Reference animal for genomic and research studies",
				AssociatedModules: []string{"genomics", "snp-analysis", "phenotype"},
			},
		},
	}
}
