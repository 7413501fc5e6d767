package bot

import "github.com/example/coursebot/internal/gateway"

// Menu buttons
const (
	btnCourseInfo = "ℹ️ Информация о курсе"
	btnSupport    = "📞 Связь с оператором"
	btnLocation   = "📍 Отправить местоположение"
	btnSkipGeo    = "🚫 Не отправлять"

	btnEditSchedule = "✏️ Редактировать расписание"
	btnBroadcast    = "📢 Массовая рассылка"
	btnSearch       = "🔍 Поиск пользователя"
	btnStudents     = "📋 Показать учеников"
)

// Commands
const (
	cmdStart        = "/start"
	cmdCancel       = "/cancel"
	cmdAddTestUsers = "/add_test_users"
	cmdClearDB      = "/clear_db"
)

const (
	adminWelcomeText      = "Добро пожаловать, Админ!"
	alreadyRegisteredText = "Вы уже зарегистрированы!"
	greetingText          = "Благословенного дня! 🙏\n" +
		"Меня зовут Роман, я помогу вам зарегистрироваться на курс изучения Библии и получить информацию о занятиях."
	registeredText = "Спасибо за регистрацию! 🎉\n" +
		"Теперь отправьте ваше местоположение, чтобы мы могли правильно определить ваше время занятий.\n\n" +
		"Если не хотите отправлять местоположение, нажмите кнопку '" + btnSkipGeo + "'."

	ageNotNumberText = "Возраст должен быть числом."
	textRequiredText = "Пожалуйста, отправьте ответ текстом."
	cancelledText    = "Действие отменено."
	internalErrText  = "Произошла ошибка, попробуйте позже."
	unknownText      = "Пожалуйста, воспользуйтесь кнопками меню."

	notRegisteredText = "Чтобы зарегистрироваться на курс, отправьте " + cmdStart

	timezoneSetFmt      = "✅ Ваш часовой пояс установлен: %s"
	timezoneFallbackFmt = "❌ Не удалось определить часовой пояс. Используйте стандартный (%s)."
	geoSkippedFmt       = "Хорошо, будет использован стандартный часовой пояс (%s)."

	noScheduleText  = "❌ Расписание ещё не добавлено."
	scheduleInfoFmt = "📅 Расписание занятий:\n%s\n\n📅 Дни недели: %s\n⏰ Время: %s (%s)"
	supportFmt      = "Свяжитесь с оператором:[Перейти в чат](https://t.me/%s)"
	noSupportText   = "Контакт поддержки пока не настроен."

	invalidDaysText     = "Ошибка! Введите дни недели через запятую, например: Пн, Ср, Пт."
	invalidTimeText     = "Ошибка! Введите время в формате ЧЧ:ММ (например: 19:30)."
	invalidTimezoneText = "Ошибка! Введите корректный часовой пояс (например: UTC+3 или UTC-5)."
	scheduleSavedText   = "✅ Расписание обновлено!"
	scheduleChangedText = "📢 Внимание! Расписание занятий изменилось. Проверьте новое расписание в боте \n" +
		"по кнопке '" + btnCourseInfo + "'"

	emptyBroadcastText = "Отправьте текст или одно медиа с подписью."
	broadcastStartText = "⏳ Рассылка запущена, отчёт придёт по завершении."

	searchTitle      = "📋 Результаты поиска:\n"
	searchRowFmt     = "👤 %s, 🏙 %s, %d возраст\n📞 %s, 📨 %s\n\n"
	searchNoneText   = "❌ Пользователи не найдены."
	noStudentsText   = "В базе данных пока нет зарегистрированных учеников."
	testUsersFmt     = "✅ Тестовые пользователи добавлены! Новых: %d"
	databaseWipeText = "✅ База данных очищена!"
)

var afterRegistrationKeyboard = gateway.Keyboard{
	{{Text: btnCourseInfo}},
	{{Text: btnSupport}},
}

var geoKeyboard = gateway.Keyboard{
	{{Text: btnLocation, RequestLocation: true}},
	{{Text: btnSkipGeo}},
}

var adminKeyboard = gateway.Keyboard{
	{{Text: btnEditSchedule}},
	{{Text: btnBroadcast}},
	{{Text: btnSearch}},
	{{Text: btnStudents}},
}
