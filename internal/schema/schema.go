// Package schema holds the relation-descriptor table: which record types
// encode graph edges and which fields carry the edge endpoints.
package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Descriptor describes how to read a containment or association
// relationship out of a relation record. RelatingField is a single
// reference, RelatedField a reference or array of references.
//
// For aggregation relations the relating side is the parent. Property-set
// relations run the other way: the relating side holds the payload and the
// related side names the element. Both orientations use the same Descriptor;
// the consumer decides which side it reads ids from.
type Descriptor struct {
	RelationType  string `json:"relation_type"`
	RelatingField string `json:"relating_field"`
	RelatedField  string `json:"related_field"`
}

// Set is the full descriptor table for one model schema.
type Set struct {
	// ProjectType is the distinguished root record type.
	ProjectType string

	// Aggregates and Spatial both contribute tree children.
	Aggregates Descriptor
	Spatial    Descriptor

	// Property-oriented relations (relating side carries the payload).
	PropertySets Descriptor
	TypeOf       Descriptor
	Materials    Descriptor
}

// Default returns the IFC2x3/IFC4 descriptor table.
func Default() Set {
	return Set{
		ProjectType: "IFCPROJECT",
		Aggregates: Descriptor{
			RelationType:  "IFCRELAGGREGATES",
			RelatingField: "RelatingObject",
			RelatedField:  "RelatedObjects",
		},
		Spatial: Descriptor{
			RelationType:  "IFCRELCONTAINEDINSPATIALSTRUCTURE",
			RelatingField: "RelatingStructure",
			RelatedField:  "RelatedElements",
		},
		PropertySets: Descriptor{
			RelationType:  "IFCRELDEFINESBYPROPERTIES",
			RelatingField: "RelatingPropertyDefinition",
			RelatedField:  "RelatedObjects",
		},
		TypeOf: Descriptor{
			RelationType:  "IFCRELDEFINESBYTYPE",
			RelatingField: "RelatingType",
			RelatedField:  "RelatedObjects",
		},
		Materials: Descriptor{
			RelationType:  "IFCRELASSOCIATESMATERIAL",
			RelatingField: "RelatingMaterial",
			RelatedField:  "RelatedObjects",
		},
	}
}

type fileConfig struct {
	ProjectType string          `hcl:"project_type,optional"`
	Relations   []relationBlock `hcl:"relation,block"`
}

type relationBlock struct {
	Name     string `hcl:"name,label"`
	Type     string `hcl:"type"`
	Relating string `hcl:"relating"`
	Related  string `hcl:"related"`
}

// Load reads an HCL override file on top of the defaults. Relation blocks
// are matched by label: aggregates, spatial, psets, typeof, materials.
//
//	project_type = "IFCPROJECT"
//
//	relation "psets" {
//	  type     = "IFCRELDEFINESBYPROPERTIES"
//	  relating = "RelatingPropertyDefinition"
//	  related  = "RelatedObjects"
//	}
func Load(path string) (Set, error) {
	set := Default()
	var cfg fileConfig
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return Set{}, fmt.Errorf("decode schema %s: %w", path, err)
	}
	return apply(set, cfg)
}

// LoadBytes decodes an in-memory HCL schema. The filename picks the HCL
// syntax variant and shows up in diagnostics.
func LoadBytes(filename string, src []byte) (Set, error) {
	set := Default()
	var cfg fileConfig
	if err := hclsimple.Decode(filename, src, nil, &cfg); err != nil {
		return Set{}, fmt.Errorf("decode schema %s: %w", filename, err)
	}
	return apply(set, cfg)
}

func apply(set Set, cfg fileConfig) (Set, error) {
	if cfg.ProjectType != "" {
		set.ProjectType = cfg.ProjectType
	}
	for _, rel := range cfg.Relations {
		desc := Descriptor{
			RelationType:  rel.Type,
			RelatingField: rel.Relating,
			RelatedField:  rel.Related,
		}
		switch rel.Name {
		case "aggregates":
			set.Aggregates = desc
		case "spatial":
			set.Spatial = desc
		case "psets":
			set.PropertySets = desc
		case "typeof":
			set.TypeOf = desc
		case "materials":
			set.Materials = desc
		default:
			return Set{}, fmt.Errorf("unknown relation block %q", rel.Name)
		}
	}
	return set, nil
}
