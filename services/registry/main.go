package registry

import (
	"fmt"
	"os"
	"time"

	"varsearch/api/models/constants"
	"varsearch/api/models/constants/sample"

	. "github.com/ahmetb/go-linq"
	yaml "gopkg.in/yaml.v2"
)

/*
	Project / family / individual / sample registry.

	The relational side of the application owns this data; here it is
	served read-only from a yaml file loaded at startup, behind an
	interface so the search layer never touches the storage directly.
*/

type Individual struct {
	IndivId string `yaml:"indiv_id"`
}

type Family struct {
	FamilyId           string       `yaml:"family_id"`
	ElasticsearchIndex string       `yaml:"elasticsearch_index"`
	Individuals        []Individual `yaml:"individuals"`
}

type Project struct {
	ProjectId          string                `yaml:"project_id"`
	GenomeVersion      constants.GenomeBuild `yaml:"genome_version"`
	ElasticsearchIndex string                `yaml:"elasticsearch_index"`
	Families           []Family              `yaml:"families"`
}

type Sample struct {
	SampleId           string                 `yaml:"sample_id"`
	IndividualId       string                 `yaml:"individual_id"`
	DatasetType        constants.DatasetType  `yaml:"dataset_type"`
	SampleStatus       constants.SampleStatus `yaml:"sample_status"`
	LoadedDate         *time.Time             `yaml:"loaded_date"`
	ElasticsearchIndex string                 `yaml:"elasticsearch_index"`
}

type Registry interface {
	GetProject(projectId string) (*Project, error)
	GetFamily(projectId string, familyId string) (*Project, *Family, error)
	Individuals(projectId string, familyId string, subset []string) ([]Individual, error)
	LoadedVariantCallSamples(individualIds []string) []Sample
}

type fileRegistryDocument struct {
	Projects []Project `yaml:"projects"`
	Samples  []Sample  `yaml:"samples"`
}

type FileRegistry struct {
	projects map[string]*Project
	samples  []Sample
}

func NewFileRegistry(path string) (*FileRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file %s: %w", path, err)
	}
	defer f.Close()

	var doc fileRegistryDocument
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode registry file %s: %w", path, err)
	}

	reg := &FileRegistry{
		projects: map[string]*Project{},
		samples:  doc.Samples,
	}
	for i := range doc.Projects {
		project := doc.Projects[i]
		reg.projects[project.ProjectId] = &project
	}

	fmt.Printf("Loaded registry from %s : %d projects, %d samples\n", path, len(reg.projects), len(reg.samples))

	return reg, nil
}

// Projects lists every registered project, ordered by project id.
func (r *FileRegistry) Projects() []Project {
	projects := []Project{}
	From(r.projects).
		SelectT(func(kv KeyValue) Project { return *(kv.Value.(*Project)) }).
		OrderByT(func(p Project) string { return p.ProjectId }).
		ToSlice(&projects)
	return projects
}

func (r *FileRegistry) GetProject(projectId string) (*Project, error) {
	project, found := r.projects[projectId]
	if !found {
		return nil, fmt.Errorf("project not found: %s", projectId)
	}
	return project, nil
}

func (r *FileRegistry) GetFamily(projectId string, familyId string) (*Project, *Family, error) {
	project, err := r.GetProject(projectId)
	if err != nil {
		return nil, nil, err
	}
	for i := range project.Families {
		if project.Families[i].FamilyId == familyId {
			return project, &project.Families[i], nil
		}
	}
	return nil, nil, fmt.Errorf("family not found: %s in project %s", familyId, projectId)
}

// Individuals lists the individuals of a project, restricted to one family
// and/or an explicit individual-id subset when given. Order follows the
// registry file; duplicates in the subset do not duplicate output.
func (r *FileRegistry) Individuals(projectId string, familyId string, subset []string) ([]Individual, error) {
	project, err := r.GetProject(projectId)
	if err != nil {
		return nil, err
	}

	var individuals []Individual
	for _, family := range project.Families {
		if familyId != "" && family.FamilyId != familyId {
			continue
		}
		individuals = append(individuals, family.Individuals...)
	}

	if len(subset) == 0 {
		return individuals, nil
	}

	var restricted []Individual
	From(individuals).
		WhereT(func(i Individual) bool {
			return From(subset).AnyWithT(func(id string) bool { return id == i.IndivId })
		}).
		DistinctByT(func(i Individual) string { return i.IndivId }).
		ToSlice(&restricted)
	return restricted, nil
}

// LoadedVariantCallSamples returns the samples for the given individuals
// whose dataset-type is variant-calls and whose load completed, ordered
// most-recently-loaded-first.
func (r *FileRegistry) LoadedVariantCallSamples(individualIds []string) []Sample {
	var matched []Sample
	From(r.samples).
		WhereT(func(s Sample) bool {
			return s.DatasetType == sample.DatasetTypeVariantCalls &&
				s.SampleStatus == sample.StatusLoaded &&
				s.LoadedDate != nil &&
				From(individualIds).AnyWithT(func(id string) bool { return id == s.IndividualId })
		}).
		OrderByDescendingT(func(s Sample) int64 { return s.LoadedDate.UnixNano() }).
		ToSlice(&matched)
	return matched
}
