package grammar

// genLR1Closure expands a seed item set. For every item `A -> α · B β, a` with a non-terminal B, it
// adds `B -> · γ, b` for each production of B and each b in FIRST(β a) except NULL, and repeats
// until no new item appears. The result keeps the seed items first and the rest in the order they
// were found.
func genLR1Closure(seed []*lrItem, prods *productionSet, analysis *Analysis) ([]*lrItem, error) {
	var items []*lrItem
	known := map[lrItemID]struct{}{}
	var unchecked []*lrItem
	for _, item := range seed {
		if _, ok := known[item.id]; ok {
			continue
		}
		known[item.id] = struct{}{}
		items = append(items, item)
		unchecked = append(unchecked, item)
	}

	for len(unchecked) > 0 {
		var next []*lrItem
		for _, item := range unchecked {
			if item.ended || !item.dottedSymbol.IsNonTerminal() {
				continue
			}

			// A declared non-terminal without productions derives nothing and adds no item.
			ps, _ := prods.findByLHS(item.dottedSymbol)
			heads := analysis.headSet(item.rest(), item.lookAhead)
			for _, prod := range ps {
				for _, la := range heads {
					newItem, err := newLR1Item(prod, 0, la)
					if err != nil {
						return nil, err
					}
					if _, ok := known[newItem.id]; ok {
						continue
					}
					known[newItem.id] = struct{}{}
					items = append(items, newItem)
					next = append(next, newItem)
				}
			}
		}
		unchecked = next
	}

	return items, nil
}
