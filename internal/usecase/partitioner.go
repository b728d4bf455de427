package usecase

import (
	"sort"

	"github.com/pricelens/backend/internal/domain"
)

// clientRow is one client line item prepared for matching within a
// cluster.
type clientRow struct {
	item domain.ClientItem
	text string
}

// scrapedRow is one scraped product prepared for matching within a
// cluster.
type scrapedRow struct {
	item domain.ScrapedItem
	text string
}

// clusterSlice holds one cluster's rows, text-normalised and ready for
// embedding. Scraped rows are already capped.
type clusterSlice struct {
	id          int
	clientRows  []clientRow
	scrapedRows []scrapedRow
}

// Partitioner slices the two inputs by cluster id, applying text
// validation and the per-cluster scraped cap. Only clusters present on
// both sides yield a slice.
type Partitioner struct {
	scrapedCap int
}

// NewPartitioner creates a partitioner. cap bounds the scraped rows
// considered per cluster; zero or negative selects the default of 100.
func NewPartitioner(cap int) *Partitioner {
	if cap <= 0 {
		cap = 100
	}
	return &Partitioner{scrapedCap: cap}
}

// Partition returns per-cluster slices ordered by cluster id, plus the
// count of rows dropped for input degeneracy (missing cluster id, empty
// text). A cluster left empty on either side after filtering yields no
// slice.
func (p *Partitioner) Partition(clients []domain.ClientItem, scraped []domain.ScrapedItem) ([]clusterSlice, int) {
	dropped := 0

	clientsByCluster := make(map[int][]clientRow)
	for _, item := range clients {
		text, ok := NormalizeText(item.NormalisedDescription)
		if !ok {
			dropped++
			continue
		}
		clientsByCluster[item.ClusterID] = append(clientsByCluster[item.ClusterID], clientRow{item: item, text: text})
	}

	scrapedByCluster := make(map[int][]scrapedRow)
	for _, item := range scraped {
		if item.ClusterID == nil {
			dropped++
			continue
		}
		text, ok := NormalizeText(item.Title)
		if !ok {
			dropped++
			continue
		}
		id := *item.ClusterID
		if len(scrapedByCluster[id]) >= p.scrapedCap {
			// Cap keeps the similarity matrix bounded; rows past it
			// never participate.
			continue
		}
		scrapedByCluster[id] = append(scrapedByCluster[id], scrapedRow{item: item, text: text})
	}

	ids := make([]int, 0, len(clientsByCluster))
	for id := range clientsByCluster {
		if len(scrapedByCluster[id]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	slices := make([]clusterSlice, 0, len(ids))
	for _, id := range ids {
		slices = append(slices, clusterSlice{
			id:          id,
			clientRows:  clientsByCluster[id],
			scrapedRows: scrapedByCluster[id],
		})
	}
	return slices, dropped
}
