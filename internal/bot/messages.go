package bot

import (
	"fmt"
	"strings"

	"ridematcher/internal/matching"
	"ridematcher/internal/models"
)

const (
	msgWelcome = "Привет! Я помогаю находить попутчиков на электрички.\n" +
		"Настройте маршрут командой /setstations, затем ищите поезд через /goto или /goback."
	msgHelp = "Команды:\n" +
		"/goto — поездка на работу (базовая станция → пункт назначения)\n" +
		"/goback — поездка домой (обратное направление)\n" +
		"/cancelride — отменить активный поиск\n" +
		"/setstations <код> <название>; <код> <название> — настроить маршрут\n" +
		"/profile — показать настройки маршрута"
	msgNoStations     = "Сначала настройте маршрут: /setstations <код> <название>; <код> <название>"
	msgAskArrival     = "К какому времени вы хотите приехать на станцию «%s»?\nНапример: 08:45 или 08:30-09:00"
	msgInvalidTime    = "Не понял время. Напишите, например, 08:45 или 08:30-09:00."
	msgLookupFailed   = "Расписание сейчас недоступно. Попробуйте позже."
	msgSearchFailed   = "Что-то пошло не так. Попробуйте позже."
	msgNoTrains       = "В этом окне нет подходящих поездов."
	msgNoMatches      = "Пока совпадений нет — я напишу, как только кто-то выберет тот же поезд."
	msgCancelSuccess  = "Поиск отменён. Вы больше не участвуете в подборе попутчиков."
	msgCancelNothing  = "Активного поиска нет."
	msgStationsSaved  = "Маршрут сохранён: %s → %s"
	msgStationsFormat = "Формат: /setstations <код> <название>; <код> <название>"
	msgNoProfile      = "Маршрут не настроен. Используйте /setstations."
	msgNotAdmin       = "Команда доступна только администраторам."
	msgInfo           = "Начните с /goto или /goback, либо посмотрите /help."
)

// formatSearchResult builds the reply for a completed search, listing every
// thread that already has other riders on it.
func formatSearchResult(result *matching.SearchResult) string {
	if len(result.Candidates) == 0 {
		return msgNoTrains
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Поиск выполнен!\n🚆 Поездов в вашем окне: %d\n", len(result.Candidates))

	if len(result.Groups) == 0 {
		sb.WriteString("\n")
		sb.WriteString(msgNoMatches)
		return sb.String()
	}

	departures := make(map[string]string, len(result.Candidates))
	for _, candidate := range result.Candidates {
		if _, ok := departures[candidate.ThreadID]; !ok {
			departures[candidate.ThreadID] = candidate.DepartureTime.Format("15:04")
		}
	}

	sb.WriteString("\n🤝 Найдены попутчики:\n")
	for _, group := range result.Groups {
		fmt.Fprintf(&sb, "\nПоезд %s:\n", departures[group.ThreadID])
		for _, member := range group.Members {
			fmt.Fprintf(&sb, "  — %s (%s → %s)\n",
				member.DisplayName(), member.FromStopLabel, member.ToStopLabel)
		}
	}
	return sb.String()
}

// arrivalStation names the station the user is heading to, for the prompt.
func arrivalStation(prof *models.UserProfile, direction models.Direction) string {
	_, _, _, toLabel := prof.Route(direction)
	if toLabel == "" {
		return "вашей станции"
	}
	return toLabel
}
