package maintenance

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-co-op/gocron"

	"varsearch/api/models"
	esRepo "varsearch/api/repositories/elasticsearch"
	"varsearch/api/services/registry"
)

type (
	MaintenanceService struct {
		Initialized bool
		Es7Client   *es7.Client
		Config      *models.Config
		Registry    registry.Registry
	}
)

func NewMaintenanceService(es *es7.Client, cfg *models.Config, reg registry.Registry) *MaintenanceService {
	ms := &MaintenanceService{
		Initialized: false,
		Es7Client:   es,
		Config:      cfg,
		Registry:    reg,
	}

	ms.Init()

	return ms
}

func (ms *MaintenanceService) Init() {
	// initialization if necessary
	if !ms.Initialized {
		// - spin up a go routine that periodically cross-checks the
		//   project/family registry against the cluster: every index the
		//   registry points a search at must actually exist, otherwise
		//   searches against it quietly return nothing
		go func() {
			// setup cron job
			s := gocron.NewScheduler(time.UTC)

			s.Every(1).Days().At("04:00:00").Do(func() { // 12am EST
				fmt.Printf("[%s] - Running registry index verification..\n", time.Now())

				mappings, err := esRepo.GetIndexMappings(ms.Config, ms.Es7Client, ms.Config.Api.VariantIndexPattern)
				if err != nil {
					fmt.Printf("[%s] - Error getting cluster index mappings : %v..\n", time.Now(), err)
					return
				}

				clusterIndices, _ := mappings.ChildrenMap()

				missing := ms.missingRegistryIndices(clusterIndices)
				if len(missing) == 0 {
					fmt.Printf("[%s] - All registry indices present in the cluster!\n", time.Now())
					return
				}

				for registryIndex, owners := range missing {
					fmt.Printf("[%s] - Registry index pattern '%s' (%s) matches no cluster index!\n",
						time.Now(), registryIndex, strings.Join(owners, ", "))
				}
			})

			s.StartBlocking()
		}()

		ms.Initialized = true
	}
}

// missingRegistryIndices returns the registry index patterns that match no
// index in the cluster, mapped to the project/family ids referring to them.
func (ms *MaintenanceService) missingRegistryIndices(clusterIndices map[string]*gabs.Container) map[string][]string {
	missing := map[string][]string{}

	recordIfMissing := func(indexPattern string, owner string) {
		if indexPattern == "" {
			return
		}
		for _, name := range strings.Split(indexPattern, ",") {
			prefix := strings.TrimRight(name, "*")
			for clusterIndex := range clusterIndices {
				if strings.HasPrefix(clusterIndex, prefix) {
					return
				}
			}
		}
		missing[indexPattern] = append(missing[indexPattern], owner)
	}

	for _, project := range ms.allProjects() {
		recordIfMissing(project.ElasticsearchIndex, project.ProjectId)
		for _, family := range project.Families {
			recordIfMissing(family.ElasticsearchIndex, project.ProjectId+"/"+family.FamilyId)
		}
	}

	return missing
}

func (ms *MaintenanceService) allProjects() []registry.Project {
	type projectLister interface {
		Projects() []registry.Project
	}
	if lister, ok := ms.Registry.(projectLister); ok {
		return lister.Projects()
	}
	return nil
}
