package knowledge

import "context"

// DatasetSchema is the canonical description of the low altitude economy
// flight dataset consumed by prompt builders and the retriever's schema
// stage.
const DatasetSchema = `Low Altitude Economy flight dataset
Columns:
  - date (YYYY-MM-DD): flight date
  - year, month, quarter: derived temporal dimensions
  - region (string): operating region, e.g. Shenzhen, Guangzhou, Zhuhai
  - aircraft_type (string): drone | eVTOL | helicopter
  - purpose (string): logistics | patrol | survey | tourism
  - flights (int): number of sorties
  - duration_minutes (float): total airborne minutes
  - distance_km (float): total distance flown`

// StaticSchemaProvider serves a fixed schema description. It exists so the
// retriever can treat schema lookup as an external collaborator that may be
// swapped for a live metadata service.
type StaticSchemaProvider struct {
	description string
}

// NewStaticSchemaProvider returns a provider serving the canonical dataset
// schema, or a custom description when one is supplied.
func NewStaticSchemaProvider(description string) *StaticSchemaProvider {
	if description == "" {
		description = DatasetSchema
	}
	return &StaticSchemaProvider{description: description}
}

// SchemaDescription implements core.SchemaProvider.
func (p *StaticSchemaProvider) SchemaDescription(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.description, nil
}
