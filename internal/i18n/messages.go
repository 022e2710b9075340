package i18n

// messages maps language code -> key -> template.
var messages = map[string]map[string]string{
	English: {
		// Presence status lines
		"status_launching": "Launching the game",
		"status_hangar":    "In hangar",
		"status_loading":   "Loading into battle",
		"status_in_battle": "In battle",
		"status_in_game":   "In game",

		// Presence field labels
		"field_speed":    "Speed",
		"field_rpm":      "RPM",
		"field_crew":     "Crew",
		"field_tas":      "TAS",
		"field_ias":      "IAS",
		"field_altitude": "Altitude",
		"field_fuel":     "Fuel",
		"playing_as":     "Playing as: {vehicle}",

		// Startup
		"press_enter":         "Press Enter to exit...",
		"program_started":     "Program started",
		"program_will_try":    "The program will try to reach War Thunder {attempts} times with {seconds} seconds between attempts. If the game is not running, the program will exit.",
		"config_created":      "Created default configuration",
		"config_loaded":       "Configuration loaded",
		"config_fallback":     "Configuration could not be used, falling back to defaults",
		"settings_imported":   "Imported legacy settings.json",
		"update_available":    "A new version is available",
		"update_check_failed": "Failed to check for updates",

		// Discord
		"discord_connecting":       "Connecting, attempt #{attempt}",
		"discord_connected":        "Successfully connected",
		"discord_not_found":        "Discord not found",
		"discord_waiting":          "{reason}, waiting {seconds} seconds...",
		"discord_invalid_id":       "Invalid application ID",
		"discord_image_problem":    "Image problem, trying another option...",
		"discord_alt_success":      "Connected with the alternative image",
		"discord_retry_failed":     "Retry attempt failed",
		"discord_connection_error": "Connection error",
		"discord_failed_attempts":  "Failed to connect to Discord after {attempts} attempts",
		"discord_status_updated":   "Status updated",
		"discord_update_failed":    "Failed to update status",

		// Telemetry
		"wt_not_running":       "War Thunder is not running or the War Thunder API is unreachable",
		"connection_error":     "Connection error",
		"request_timeout":      "Request timed out",
		"unexpected_status":    "Unexpected status code",
		"request_error":        "Request error",
		"starting_update_loop": "Starting status update loop (interval: {interval}s)",
		"attempt_waiting":      "Attempt #{attempt}: waiting {seconds} seconds...",
		"max_attempts_reached": "Max connection attempts to War Thunder reached",
		"air_parse_failed":     "Failed to parse air vehicle information",
		"vehicle_names_loaded": "Vehicle names reloaded",
		"iteration_limit":      "Max iterations reached, exiting loop",
		"stopped_by_user":      "Program stopped by user",
	},
	Russian: {
		"status_launching": "Запускает игру",
		"status_hangar":    "В ангаре",
		"status_loading":   "Загрузка в бой",
		"status_in_battle": "В бою",
		"status_in_game":   "В игре",

		"field_speed":    "Скорость",
		"field_rpm":      "Обороты",
		"field_crew":     "Экипаж",
		"field_tas":      "Истинная скорость",
		"field_ias":      "Приборная скорость",
		"field_altitude": "Высота",
		"field_fuel":     "Топливо",
		"playing_as":     "Играет на: {vehicle}",

		"press_enter":         "Нажмите Enter для выхода...",
		"program_started":     "Программа запущена",
		"program_will_try":    "Программа будет пытаться подключиться к War Thunder {attempts} раз с задержкой {seconds} секунд между попытками. Если игра не запущена, программа завершится.",
		"config_created":      "Создан файл настроек по умолчанию",
		"config_loaded":       "Настройки загружены",
		"config_fallback":     "Не удалось использовать настройки, используются значения по умолчанию",
		"settings_imported":   "Импортирован старый settings.json",
		"update_available":    "Доступна новая версия",
		"update_check_failed": "Не удалось проверить обновления",

		"discord_connecting":       "Подключение, попытка #{attempt}",
		"discord_connected":        "Успешно подключено",
		"discord_not_found":        "Discord не найден",
		"discord_waiting":          "{reason}, ожидание {seconds} секунд...",
		"discord_invalid_id":       "Неверный ID приложения",
		"discord_image_problem":    "Проблема с изображением, пробуем другой вариант...",
		"discord_alt_success":      "Подключение успешно с альтернативным изображением",
		"discord_retry_failed":     "Повторная попытка не удалась",
		"discord_connection_error": "Ошибка подключения",
		"discord_failed_attempts":  "Не удалось подключиться к Discord после {attempts} попыток",
		"discord_status_updated":   "Статус обновлен",
		"discord_update_failed":    "Не удалось обновить статус",

		"wt_not_running":       "War Thunder не запущен или нет подключения к War Thunder API",
		"connection_error":     "Ошибка подключения",
		"request_timeout":      "Превышено время ожидания запроса",
		"unexpected_status":    "Неожиданный код ответа",
		"request_error":        "Ошибка запроса",
		"starting_update_loop": "Начало цикла обновления статуса (интервал: {interval}s)",
		"attempt_waiting":      "Попытка #{attempt}: ожидание {seconds} секунд...",
		"max_attempts_reached": "Достигнуто максимальное количество попыток подключения к War Thunder",
		"air_parse_failed":     "Не удалось разобрать данные о самолёте",
		"vehicle_names_loaded": "Названия техники обновлены",
		"iteration_limit":      "Достигнуто максимальное число итераций, выход из цикла",
		"stopped_by_user":      "Программа остановлена пользователем",
	},
}
