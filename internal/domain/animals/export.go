package animals

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// Export: wrappers finitos de I/O sobre la colección; el formato de archivo
// no es parte del core, solo una proyección.

// ExportJSON serializa la colección con indentación (para descarga).
func ExportJSON(animalsIn []Animal) ([]byte, error) {
	return json.MarshalIndent(animalsIn, "", "  ")
}

// ExportCSV proyecta las columnas principales de la tabla.
func ExportCSV(animalsIn []Animal) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Registry ID", "Name", "Species", "Sex", "Age", "Status", "Roles",
		"Internal Number", "Customer", "Registration Date", "Purpose",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, a := range animalsIn {
		age := ""
		if a.Age != nil {
			age = fmt.Sprintf("%g", *a.Age)
		}

		roles := make([]string, 0, len(a.Roles))
		for _, r := range ActiveRoles(a) {
			roles = append(roles, string(r.Role))
		}

		internal := ""
		if a.CurrentInternalNumber != nil {
			internal = a.CurrentInternalNumber.InternalNumber
		}

		customer := ""
		if a.Customer != nil {
			customer = a.Customer.Name
		}

		row := []string{
			a.RegistryID,
			a.Name,
			string(a.Species),
			string(a.Sex),
			age,
			string(a.Status),
			strings.Join(roles, "; "),
			internal,
			customer,
			a.RegistrationDate.Format("2006-01-02"),
			string(a.Purpose),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
