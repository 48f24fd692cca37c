package ui

import "sort"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyFile              = "file"
	KeySettings          = "settings"
	KeyLanguage          = "language"
	KeyFetch             = "fetch"
	KeyDownload          = "download"
	KeyCancel            = "cancel"
	KeyBrowse            = "browse"
	KeySave              = "save"
	KeyEnterURL          = "enter_url"
	KeyGlobalFormat      = "global_format"
	KeySelectAll         = "select_all"
	KeySaveTo            = "save_to"
	KeyPlaylistSubdir    = "playlist_subdir"
	KeyEntries           = "entries"
	KeyDownloads         = "downloads"
	KeyLog               = "log"
	KeyClearLog          = "clear_log"
	KeyOpenFolder        = "open_folder"
	KeyDefaultSaveDir    = "default_save_dir"
	KeyAutoShutdown      = "auto_shutdown"
	KeyMaxParallel       = "max_parallel"
	KeySampleRate        = "sample_rate"
	KeyFetching          = "fetching"
	KeyFetchError        = "fetch_error"
	KeyFetchedCount      = "fetched_count"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyInvalidURL        = "invalid_url"
	KeyNothingSelected   = "nothing_selected"
	KeyDownloadStarted   = "download_started"
	KeyBatchFinished     = "batch_finished"
	KeyCanceling         = "canceling"
	KeyAlreadyRunning    = "already_running"
	KeySettingsSaved     = "settings_saved"
	KeySelectedCount     = "selected_count"
	KeyFormatAll         = "format_all"
	KeyFormatPartial     = "format_partial"
	KeyShutdownScheduled = "shutdown_scheduled"
	KeyErrorOpeningDir   = "error_opening_dir"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: DefaultLanguageCode,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. Unknown codes are ignored.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = DefaultLanguageCode
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts[DefaultLanguageCode]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// LanguageCodes returns the available language codes in a stable order
func (l *Localization) LanguageCodes() []string {
	codes := make([]string, 0, len(l.texts))
	for code := range l.GetAvailableLanguages() {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "QuickYTDL",
		KeyFile:              "File",
		KeySettings:          "Settings",
		KeyLanguage:          "Language",
		KeyFetch:             "Fetch",
		KeyDownload:          "Download",
		KeyCancel:            "Cancel",
		KeyBrowse:            "Browse",
		KeySave:              "Save",
		KeyEnterURL:          "Playlist or video URL",
		KeyGlobalFormat:      "Global format",
		KeySelectAll:         "Select all",
		KeySaveTo:            "Save to",
		KeyPlaylistSubdir:    "Playlist subfolder",
		KeyEntries:           "Videos",
		KeyDownloads:         "Downloads",
		KeyLog:               "Log",
		KeyClearLog:          "Clear log",
		KeyOpenFolder:        "Open folder",
		KeyDefaultSaveDir:    "Default save directory",
		KeyAutoShutdown:      "Shut down when all downloads succeed",
		KeyMaxParallel:       "Parallel downloads",
		KeySampleRate:        "Sample rate",
		KeyFetching:          "Fetching...",
		KeyFetchError:        "Fetch error",
		KeyFetchedCount:      "Fetched %d videos",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyInvalidURL:        "URL must start with http:// or https://",
		KeyNothingSelected:   "Select at least one video",
		KeyDownloadStarted:   "Downloading %d videos to %s",
		KeyBatchFinished:     "Finished: %d completed, %d failed, %d canceled, %d skipped",
		KeyCanceling:         "Canceling downloads...",
		KeyAlreadyRunning:    "A download batch is already running",
		KeySettingsSaved:     "Settings saved",
		KeySelectedCount:     "%d of %d selected",
		KeyFormatAll:         "available for every video",
		KeyFormatPartial:     "not available for every video",
		KeyShutdownScheduled: "All downloads succeeded, shutting down",
		KeyErrorOpeningDir:   "Error opening folder",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "QuickYTDL",
		KeyFile:              "Файл",
		KeySettings:          "Настройки",
		KeyLanguage:          "Язык",
		KeyFetch:             "Получить",
		KeyDownload:          "Скачать",
		KeyCancel:            "Отмена",
		KeyBrowse:            "Обзор",
		KeySave:              "Сохранить",
		KeyEnterURL:          "Ссылка на плейлист или видео",
		KeyGlobalFormat:      "Общий формат",
		KeySelectAll:         "Выбрать все",
		KeySaveTo:            "Сохранить в",
		KeyPlaylistSubdir:    "Папка плейлиста",
		KeyEntries:           "Видео",
		KeyDownloads:         "Загрузки",
		KeyLog:               "Журнал",
		KeyClearLog:          "Очистить журнал",
		KeyOpenFolder:        "Открыть папку",
		KeyDefaultSaveDir:    "Папка по умолчанию",
		KeyAutoShutdown:      "Выключить компьютер после успешной загрузки",
		KeyMaxParallel:       "Параллельных загрузок",
		KeySampleRate:        "Частота",
		KeyFetching:          "Загрузка списка...",
		KeyFetchError:        "Ошибка получения",
		KeyFetchedCount:      "Получено видео: %d",
		KeyPleaseEnterURL:    "Введите ссылку",
		KeyInvalidURL:        "Ссылка должна начинаться с http:// или https://",
		KeyNothingSelected:   "Выберите хотя бы одно видео",
		KeyDownloadStarted:   "Скачивание %d видео в %s",
		KeyBatchFinished:     "Готово: %d завершено, %d ошибок, %d отменено, %d пропущено",
		KeyCanceling:         "Отмена загрузок...",
		KeyAlreadyRunning:    "Загрузка уже выполняется",
		KeySettingsSaved:     "Настройки сохранены",
		KeySelectedCount:     "Выбрано %d из %d",
		KeyFormatAll:         "доступен для всех видео",
		KeyFormatPartial:     "доступен не для всех видео",
		KeyShutdownScheduled: "Все загрузки завершены, выключение",
		KeyErrorOpeningDir:   "Ошибка открытия папки",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "QuickYTDL",
		KeyFile:              "Arquivo",
		KeySettings:          "Configurações",
		KeyLanguage:          "Idioma",
		KeyFetch:             "Buscar",
		KeyDownload:          "Baixar",
		KeyCancel:            "Cancelar",
		KeyBrowse:            "Procurar",
		KeySave:              "Salvar",
		KeyEnterURL:          "URL da playlist ou do vídeo",
		KeyGlobalFormat:      "Formato global",
		KeySelectAll:         "Selecionar tudo",
		KeySaveTo:            "Salvar em",
		KeyPlaylistSubdir:    "Subpasta da playlist",
		KeyEntries:           "Vídeos",
		KeyDownloads:         "Downloads",
		KeyLog:               "Registro",
		KeyClearLog:          "Limpar registro",
		KeyOpenFolder:        "Abrir pasta",
		KeyDefaultSaveDir:    "Pasta padrão",
		KeyAutoShutdown:      "Desligar quando todos os downloads terminarem",
		KeyMaxParallel:       "Downloads paralelos",
		KeySampleRate:        "Taxa de amostragem",
		KeyFetching:          "Buscando...",
		KeyFetchError:        "Erro ao buscar",
		KeyFetchedCount:      "%d vídeos encontrados",
		KeyPleaseEnterURL:    "Digite uma URL",
		KeyInvalidURL:        "A URL deve começar com http:// ou https://",
		KeyNothingSelected:   "Selecione pelo menos um vídeo",
		KeyDownloadStarted:   "Baixando %d vídeos para %s",
		KeyBatchFinished:     "Concluído: %d completos, %d falhas, %d cancelados, %d ignorados",
		KeyCanceling:         "Cancelando downloads...",
		KeyAlreadyRunning:    "Um lote de downloads já está em andamento",
		KeySettingsSaved:     "Configurações salvas",
		KeySelectedCount:     "%d de %d selecionados",
		KeyFormatAll:         "disponível para todos os vídeos",
		KeyFormatPartial:     "indisponível para alguns vídeos",
		KeyShutdownScheduled: "Todos os downloads concluídos, desligando",
		KeyErrorOpeningDir:   "Erro ao abrir a pasta",
	}
}
