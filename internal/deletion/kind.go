package deletion

import "fmt"

// Kind describes a deletable record type of the host application.
type Kind struct {
	Name     string // plural, as used in routes ("gestores")
	Noun     string // singular, as shown to users ("gestor")
	Article  string // article used before the noun in prompts ("al")
	ListPath string
	Endpoint string
	Variant  Variant
	// Cascade describes what the server deletes along with the record.
	Cascade string
}

var (
	Gestor = Kind{
		Name:     "gestores",
		Noun:     "gestor",
		Article:  "al",
		ListPath: "/gestores/",
		Endpoint: "/gestores/eliminar/",
		Variant:  Simple,
		Cascade:  "Se eliminarán también los expedientes asignados a este gestor.",
	}

	Expediente = Kind{
		Name:     "expedientes",
		Noun:     "expediente",
		Article:  "el",
		ListPath: "/expedientes/",
		Endpoint: "/expedientes/eliminar/",
		Variant:  Rich,
		Cascade:  "Se eliminarán también sus documentos adjuntos y el historial de auditorías.",
	}
)

// Kinds lists the known record kinds.
var Kinds = []Kind{Gestor, Expediente}

func (k Kind) String() string {
	return k.Name
}

func actionURL(endpoint string, id any) string {
	return endpoint + fmt.Sprint(id) + "/"
}
