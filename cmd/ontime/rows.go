package main

import (
	"github.com/ontime-app/ontime/pkg/resolver"
	"github.com/ontime-app/ontime/pkg/transit"
)

type savedRow struct {
	transit.SavedRoute
	Summary string `json:"summary"`
	ETA     string `json:"eta"`
}

func savedRows(routes []transit.SavedRoute) []savedRow {
	rows := make([]savedRow, 0, len(routes))
	for _, route := range routes {
		prediction := &transit.ArrivalPrediction{
			RouteID:        route.RouteID,
			RouteNumber:    route.RouteNumber,
			EtaSeconds:     route.LastPredictedEtaSeconds,
			StopsRemaining: route.LastStopsRemaining,
		}
		rows = append(rows, savedRow{
			SavedRoute: route,
			Summary:    prediction.Summary(),
			ETA:        transit.FormatETA(route.LastPredictedEtaSeconds),
		})
	}
	return rows
}

type boardRow struct {
	resolver.RouteArrivals
	ETAs []string `json:"etas"`
}

func boardRows(board []resolver.RouteArrivals) []boardRow {
	rows := make([]boardRow, 0, len(board))
	for _, row := range board {
		etas := make([]string, 0, len(row.Predictions))
		for _, prediction := range row.Predictions {
			etas = append(etas, transit.FormatETA(prediction.EtaSeconds))
		}
		rows = append(rows, boardRow{RouteArrivals: row, ETAs: etas})
	}
	return rows
}
